package flowfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/flowfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingYAML = `
botId: demo
nodes:
  - id: start
    type: input
    position: {x: 0, y: 0}
    data:
      title: Ask name
      content: "Hi {{name}}"
      variable: name
  - id: greet
    type: message
    data:
      title: Greet
      content: "Nice to meet you, {{name}}!"
  - id: lookup
    type: api_call
    data:
      title: Lookup
      apiUrl: https://api.example.com/users/{{name}}
      apiMethod: GET
      apiHeaders:
        X-Team: support
  - id: notify
    type: action
    data:
      title: Notify
      actions:
        - type: webhook
          data:
            url: https://hooks.example.com
            body: {name: "{{name}}"}
connections:
  - {id: e1, source: start, target: greet}
  - {id: e2, source: greet, target: lookup}
  - {id: e3, source: lookup, target: notify}
variables:
  - {name: name, type: string, defaultValue: friend}
`

func TestParse_YAML(t *testing.T) {
	flow, err := flowfile.Parse([]byte(greetingYAML), flowfile.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "demo", flow.BotID)
	require.Len(t, flow.Nodes, 4)
	assert.Equal(t, domain.NodeTypeInput, flow.Nodes[0].Type)
	assert.Equal(t, "name", flow.Nodes[0].Data.Variable)
	assert.Equal(t, domain.NodeTypeAPICall, flow.Nodes[2].Type)
	assert.Equal(t, "support", flow.Nodes[2].Data.APIHeaders["X-Team"])
	require.Len(t, flow.Nodes[3].Data.Actions, 1)
	assert.Equal(t, domain.ActionWebhook, flow.Nodes[3].Data.Actions[0].Type)
	assert.Len(t, flow.Connections, 3)
	assert.Equal(t, map[string]any{"name": "friend"}, flow.DefaultVariables())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	flow, err := flowfile.Parse([]byte(greetingYAML), flowfile.FormatYAML)
	require.NoError(t, err)

	for _, name := range []string{"flow.json", "flow.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, flowfile.Save(path, flow))

			loaded, err := flowfile.Load(path)
			require.NoError(t, err)
			assert.Equal(t, flow.Nodes[0], loaded.Nodes[0])
			assert.Equal(t, flow.Connections, loaded.Connections)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := flowfile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = flowfile.Load(bad)
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	flow, err := flowfile.Parse([]byte("botId: empty\n"), flowfile.FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, flow.Nodes)
	assert.NotNil(t, flow.Connections)
}
