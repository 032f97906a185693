package domain

// Connection is a directed edge between two nodes.
type Connection struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	// Condition and Label are annotations for the editor.
	// Default traversal ignores them and follows the first edge of a source.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
}
