// Package memory provides in-process implementations of the chatflow storage ports.
// They are used by the CLI, by tests, and by single-replica deployments.
package memory
