package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// GraphOverlay contains the path of a traced turn to highlight on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	// CurrentNode is the node whose response the turn returned.
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart of a flow.
// Shapes follow the node type:
// - Start: ((Circle))
// - Condition: {Rhombus}
// - API call: [[Subroutine]]
// - Input/Question: [/Parallelogram/]
// - Handover: {{Hexagon}}
// - Default: [Rectangle]
// Edges that default traversal never takes (all but the first per source) are dotted.
func GenerateMermaid(flow *domain.Flow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == domain.StartNodeID:
			opener, closer = "((", "))"
		case node.Type == domain.NodeTypeCondition:
			opener, closer = "{", "}"
		case node.Type == domain.NodeTypeAPICall:
			opener, closer = "[[", "]]"
		case node.Type == domain.NodeTypeInput, node.Type == domain.NodeTypeQuestion:
			opener, closer = "[/", "/]"
		case node.Type == domain.NodeTypeHandover:
			opener, closer = "{{", "}}"
		}

		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Label()), closer)
	}

	taken := make(map[string]bool)
	for _, c := range flow.Connections {
		arrow := "-->"
		dotted := taken[c.Source]
		if dotted {
			arrow = "-.->"
		}
		taken[c.Source] = true

		label := c.Label
		if label == "" {
			label = c.Condition
		}
		if label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			if dotted {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(label))
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(c.Source), arrow, sanitizeMermaidID(c.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
