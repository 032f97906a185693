// Package flowfile reads and writes flow documents as YAML or JSON files.
package flowfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is a flow document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the encoding from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a flow document from path.
func Load(path string) (*domain.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	flow, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flow, nil
}

// Parse decodes a flow document.
func Parse(data []byte, format Format) (*domain.Flow, error) {
	var flow domain.Flow
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &flow); err != nil {
			return nil, fmt.Errorf("failed to parse flow json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &flow); err != nil {
			return nil, fmt.Errorf("failed to parse flow yaml: %w", err)
		}
	}
	if flow.Nodes == nil {
		flow.Nodes = []domain.Node{}
	}
	if flow.Connections == nil {
		flow.Connections = []domain.Connection{}
	}
	return &flow, nil
}

// Encode renders a flow document.
func Encode(flow *domain.Flow, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(flow, "", "  ")
	}
	return yaml.Marshal(flow)
}

// Save writes flow to path in the format implied by its extension.
func Save(path string, flow *domain.Flow) error {
	data, err := Encode(flow, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode flow: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
