package chatflow

import _ "embed"

// Version is the release of the chatflow module, read from the VERSION file.
//
//go:embed VERSION
var Version string
