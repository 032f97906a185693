package dsl

import (
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Title sets the display name of the node (defaults to its ID).
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.node.Data.Title = title
	return n
}

// At places the node on the editor canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Message marks the node as a message with the given content template.
func (n *NodeBuilder) Message(content string) *NodeBuilder {
	n.node.Type = domain.NodeTypeMessage
	n.node.Data.Content = content
	return n
}

// Question marks the node as a question offering suggested replies.
func (n *NodeBuilder) Question(content string, options ...string) *NodeBuilder {
	n.node.Type = domain.NodeTypeQuestion
	n.node.Data.Content = content
	n.node.Data.Options = options
	return n
}

// Input marks the node as capturing the user's utterance into variable.
func (n *NodeBuilder) Input(content, variable string) *NodeBuilder {
	n.node.Type = domain.NodeTypeInput
	n.node.Data.Content = content
	n.node.Data.Variable = variable
	return n
}

// Condition marks the node as a condition. Add comparisons with When.
func (n *NodeBuilder) Condition(content string) *NodeBuilder {
	n.node.Type = domain.NodeTypeCondition
	n.node.Data.Content = content
	return n
}

// When adds a comparison to a condition node. All comparisons must hold.
func (n *NodeBuilder) When(field string, op domain.Operator, value string) *NodeBuilder {
	n.node.Data.Conditions = append(n.node.Data.Conditions, domain.Condition{
		Field:    field,
		Operator: op,
		Value:    value,
	})
	return n
}

// Action marks the node as surfacing the given actions.
func (n *NodeBuilder) Action(content string, actions ...domain.Action) *NodeBuilder {
	n.node.Type = domain.NodeTypeAction
	n.node.Data.Content = content
	n.node.Data.Actions = append(n.node.Data.Actions, actions...)
	return n
}

// SetVariable adds a set_variable action to the node.
func (n *NodeBuilder) SetVariable(name string, value any) *NodeBuilder {
	n.node.Type = domain.NodeTypeAction
	n.node.Data.Actions = append(n.node.Data.Actions, domain.Action{
		Type: domain.ActionSetVariable,
		Data: map[string]any{"name": name, "value": value},
	})
	return n
}

// Handover marks the node as a hand-off to a human agent.
func (n *NodeBuilder) Handover(content string) *NodeBuilder {
	n.node.Type = domain.NodeTypeHandover
	n.node.Data.Content = content
	return n
}

// APICall marks the node as an HTTP call. The method defaults to GET.
func (n *NodeBuilder) APICall(method, url string) *NodeBuilder {
	n.node.Type = domain.NodeTypeAPICall
	n.node.Data.APIMethod = strings.ToUpper(method)
	n.node.Data.APIURL = url
	if n.node.Data.Content == "" {
		n.node.Data.Content = url
	}
	return n
}

// Header adds a request header to an api_call node.
func (n *NodeBuilder) Header(key, value string) *NodeBuilder {
	if n.node.Data.APIHeaders == nil {
		n.node.Data.APIHeaders = make(map[string]string)
	}
	n.node.Data.APIHeaders[key] = value
	return n
}

// SaveTo specifies the variable an api_call result is stored in.
func (n *NodeBuilder) SaveTo(variable string) *NodeBuilder {
	n.node.Data.Variable = variable
	return n
}

// Go adds an unconditional connection to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, "", "")
	return n
}

// Branch adds a labelled connection. With branching enabled, a condition node
// follows the branch whose condition is "true" or "false" to match its outcome.
func (n *NodeBuilder) Branch(condition, target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, condition, condition)
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	node := n.node
	node.Data.Options = append([]string(nil), n.node.Data.Options...)
	node.Data.Conditions = append([]domain.Condition(nil), n.node.Data.Conditions...)
	node.Data.Actions = append([]domain.Action(nil), n.node.Data.Actions...)
	return node
}
