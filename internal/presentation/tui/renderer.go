package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns bot responses into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a Renderer that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer(width int) (Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// PlainRenderer returns responses unchanged, for pipes and tests.
func PlainRenderer() Renderer {
	return func(markdown string) (string, error) {
		return markdown + "\n", nil
	}
}

// FormatActions lists the actions of a turn as a markdown bullet list.
func FormatActions(actions []domain.Action) string {
	if len(actions) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("**Actions**\n\n")
	for _, a := range actions {
		fmt.Fprintf(&sb, "- `%s`", a.Type)
		if len(a.Data) > 0 {
			fmt.Fprintf(&sb, " %v", a.Data)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
