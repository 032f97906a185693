package dsl

import (
	"fmt"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Builder manages the flow construction.
type Builder struct {
	botID       string
	order       []string
	nodes       map[string]*NodeBuilder
	connections []domain.Connection
	variables   []domain.Variable
}

// New creates a new flow builder for a bot.
func New(botID string) *Builder {
	return &Builder{
		botID: botID,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the flow. Nodes are built in the order they are first added.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Type: domain.NodeTypeMessage,
			Data: domain.NodeData{Title: id},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Variable declares a flow variable with a default value.
func (b *Builder) Variable(name string, typ domain.VariableType, defaultValue any) *Builder {
	b.variables = append(b.variables, domain.Variable{Name: name, Type: typ, DefaultValue: defaultValue})
	return b
}

func (b *Builder) connect(source, target, condition, label string) {
	b.connections = append(b.connections, domain.Connection{
		ID:        fmt.Sprintf("e%d", len(b.connections)+1),
		Source:    source,
		Target:    target,
		Condition: condition,
		Label:     label,
	})
}

// Build assembles the flow. It does not validate it.
func (b *Builder) Build() *domain.Flow {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].Build())
	}
	return &domain.Flow{
		BotID:       b.botID,
		Nodes:       nodes,
		Connections: append([]domain.Connection{}, b.connections...),
		Variables:   append([]domain.Variable{}, b.variables...),
	}
}

// Update returns the built flow as an edit, ready for Engine.UpdateFlow.
func (b *Builder) Update() domain.FlowUpdate {
	flow := b.Build()
	return domain.FlowUpdate{
		Nodes:       flow.Nodes,
		Connections: flow.Connections,
		Variables:   flow.Variables,
	}
}
