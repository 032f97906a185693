package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(40)
	require.NoError(t, err)

	out, err := render("Hello **Sam**")
	require.NoError(t, err)
	assert.Contains(t, out, "Sam")
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer()("Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)
}

func TestFormatActions(t *testing.T) {
	assert.Empty(t, FormatActions(nil))

	out := FormatActions([]domain.Action{
		{Type: domain.ActionRedirect, Data: map[string]any{"url": "https://example.com"}},
		{Type: domain.ActionWebhook},
	})
	assert.Contains(t, out, "- `redirect` map[url:https://example.com]")
	assert.Contains(t, out, "- `webhook`\n")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
