package domain

import (
	"time"
)

// VariableType is the declared type of a flow variable.
type VariableType string

const (
	VarString  VariableType = "string"
	VarNumber  VariableType = "number"
	VarBoolean VariableType = "boolean"
	VarArray   VariableType = "array"
	VarObject  VariableType = "object"
)

// Variable is descriptive metadata for a flow-level variable.
// Runtime bindings are untyped; nothing here is enforced by the interpreter.
type Variable struct {
	Name         string       `json:"name" yaml:"name"`
	Type         VariableType `json:"type" yaml:"type"`
	DefaultValue any          `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Flow is one version of a bot's conversation graph.
// Edits produce a new version; a stored Flow is never mutated except for IsActive.
type Flow struct {
	ID          string       `json:"id" yaml:"id"`
	BotID       string       `json:"botId" yaml:"botId"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
	Variables   []Variable   `json:"variables" yaml:"variables"`
	IsActive    bool         `json:"isActive" yaml:"isActive"`
	Version     int          `json:"version" yaml:"version"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// Node returns the node with the given ID.
func (f *Flow) Node(id string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// Next returns the first connection leaving the given node.
// Additional edges from the same source are never taken by default traversal.
func (f *Flow) Next(id string) (*Connection, bool) {
	for i := range f.Connections {
		if f.Connections[i].Source == id {
			return &f.Connections[i], true
		}
	}
	return nil, false
}

// Outgoing returns every connection leaving the given node, in declaration order.
func (f *Flow) Outgoing(id string) []Connection {
	var out []Connection
	for _, c := range f.Connections {
		if c.Source == id {
			out = append(out, c)
		}
	}
	return out
}

// DefaultVariables returns the declared default values, keyed by variable name.
func (f *Flow) DefaultVariables() map[string]any {
	defaults := make(map[string]any)
	for _, v := range f.Variables {
		if v.DefaultValue != nil {
			defaults[v.Name] = v.DefaultValue
		}
	}
	return defaults
}

// DefaultFlow returns the two-node skeleton seeded when a bot is provisioned.
func DefaultFlow(botID string) *Flow {
	return &Flow{
		BotID: botID,
		Nodes: []Node{
			{
				ID:       StartNodeID,
				Type:     NodeTypeMessage,
				Position: Position{X: 250, Y: 50},
				Data: NodeData{
					Title:   "Welcome Message",
					Content: "Hello! How can I help you today?",
				},
			},
			{
				ID:       FallbackNodeID,
				Type:     NodeTypeMessage,
				Position: Position{X: 250, Y: 200},
				Data: NodeData{
					Title:   "Fallback",
					Content: "I'm sorry, I didn't understand that. Could you rephrase?",
				},
			},
		},
		Connections: []Connection{},
		Variables:   []Variable{},
		Version:     1,
	}
}

// ValidationResult holds the structural findings for a flow.
// Errors block activation; warnings never do.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// TurnResult is the outcome of executing one conversation turn.
type TurnResult struct {
	// Response is the output of the last node visited.
	Response  string         `json:"response"`
	Variables map[string]any `json:"variables"`
	Actions   []Action       `json:"actions"`
}

// FlowUpdate is an authored edit. Applying it creates a new flow version.
type FlowUpdate struct {
	Nodes       []Node       `json:"nodes" validate:"required"`
	Connections []Connection `json:"connections"`
	Variables   []Variable   `json:"variables"`
}
