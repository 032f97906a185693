package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func node(id string, t domain.NodeType, title string) domain.Node {
	return domain.Node{ID: id, Type: t, Data: domain.NodeData{Title: title}}
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		node     domain.Node
		contains string
	}{
		{"start", node("start", domain.NodeTypeMessage, "Welcome"), `start(("Welcome"))`},
		{"condition", node("check", domain.NodeTypeCondition, "VIP?"), `check{"VIP?"}`},
		{"api call", node("weather", domain.NodeTypeAPICall, "Weather"), `weather[["Weather"]]`},
		{"input", node("ask", domain.NodeTypeInput, "Ask name"), `ask[/"Ask name"/]`},
		{"question", node("q", domain.NodeTypeQuestion, "Pick"), `q[/"Pick"/]`},
		{"handover", node("agent", domain.NodeTypeHandover, "Agent"), `agent{{"Agent"}}`},
		{"message", node("bye", domain.NodeTypeMessage, "Bye"), `bye["Bye"]`},
		{"untitled falls back to id", node("plain", domain.NodeTypeMessage, ""), `plain["plain"]`},
		{"id sanitized", node("step-1.a", domain.NodeTypeMessage, `Say "hi"`), `step_1_a["Say 'hi'"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(&domain.Flow{Nodes: []domain.Node{tt.node}}, nil)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestGenerateMermaid_Edges(t *testing.T) {
	flow := &domain.Flow{
		Nodes: []domain.Node{
			node("start", domain.NodeTypeCondition, "VIP?"),
			node("vip", domain.NodeTypeMessage, "Welcome back"),
			node("guest", domain.NodeTypeMessage, "Hello"),
		},
		Connections: []domain.Connection{
			{ID: "e1", Source: "start", Target: "vip", Label: "yes"},
			{ID: "e2", Source: "start", Target: "guest", Condition: "no"},
			{ID: "e3", Source: "vip", Target: "guest"},
		},
	}

	out := graph.GenerateMermaid(flow, nil)
	assert.Contains(t, out, `start -- "yes" --> vip`)
	assert.Contains(t, out, `start -. "no" .-> guest`)
	assert.Contains(t, out, "vip --> guest")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	flow := &domain.Flow{Nodes: []domain.Node{
		node("start", domain.NodeTypeInput, "Ask"),
		node("greet", domain.NodeTypeMessage, "Greet"),
	}}

	out := graph.GenerateMermaid(flow, &graph.GraphOverlay{
		VisitedNodes: []string{"start", "greet", "start"},
		CurrentNode:  "greet",
	})
	assert.Equal(t, 1, strings.Count(out, "class start visited;"))
	assert.Contains(t, out, "class greet visited;")
	assert.Contains(t, out, "class greet current;")
}
