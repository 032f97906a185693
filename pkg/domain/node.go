package domain

// NodeType defines the behavior of a node when the interpreter visits it.
type NodeType string

// The closed set of node kinds. Adding a kind requires a matching case in the
// interpreter's dispatch switch.
const (
	// NodeTypeMessage emits its interpolated content.
	NodeTypeMessage NodeType = "message"
	// NodeTypeQuestion behaves like a message; options are a presentation hint.
	NodeTypeQuestion NodeType = "question"
	// NodeTypeCondition evaluates its conditions and narrates the outcome.
	NodeTypeCondition NodeType = "condition"
	// NodeTypeAction surfaces its declared actions to the host.
	NodeTypeAction NodeType = "action"
	// NodeTypeHandover marks a hand-off to a human agent.
	NodeTypeHandover NodeType = "handover"
	// NodeTypeInput captures the user's utterance into a variable.
	NodeTypeInput NodeType = "input"
	// NodeTypeAPICall calls an external HTTP API and stores the JSON result.
	NodeTypeAPICall NodeType = "api_call"
)

// NodeTypes returns every valid node type, in declaration order.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeMessage,
		NodeTypeQuestion,
		NodeTypeCondition,
		NodeTypeAction,
		NodeTypeHandover,
		NodeTypeInput,
		NodeTypeAPICall,
	}
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Position holds canvas coordinates. It has no runtime effect.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents one step in a conversation flow.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// NodeData carries the per-type configuration of a node.
type NodeData struct {
	Title string `json:"title" yaml:"title"`

	// Content is the template rendered when the node executes.
	// Tokens like {{name}} are replaced with variable values.
	Content string `json:"content" yaml:"content"`

	// Options are suggested replies. The interpreter does not enforce them.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Variable is the binding written by input and api_call nodes.
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`

	// API Configuration (used if Type == "api_call")
	APIURL     string            `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	APIMethod  string            `json:"apiMethod,omitempty" yaml:"apiMethod,omitempty"`
	APIHeaders map[string]string `json:"apiHeaders,omitempty" yaml:"apiHeaders,omitempty"`

	// Conditions are ANDed together (used if Type == "condition").
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Actions are surfaced verbatim to the host (used if Type == "action").
	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Label returns the human-friendly name of the node, falling back to its ID.
func (n Node) Label() string {
	if n.Data.Title != "" {
		return n.Data.Title
	}
	return n.ID
}
