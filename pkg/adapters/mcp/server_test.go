package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingNodes = `[
  {"id": "start", "type": "input", "data": {"title": "Ask", "content": "Name?", "variable": "name"}},
  {"id": "greet", "type": "message", "data": {"title": "Greet", "content": "Hello {{name}}"}}
]`

const greetingConnections = `[{"id": "e1", "source": "start", "target": "greet"}]`

func newTestServer(t *testing.T) (*Server, *chatflow.Engine) {
	t.Helper()
	eng, err := chatflow.New()
	require.NoError(t, err)
	return NewServer(eng), eng
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestServer_ValidateFlow(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Nodes: greetingNodes, Connections: greetingConnections})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Nodes: greetingNodes})
	require.NoError(t, err)
	assert.False(t, result.Valid, "greet is unreachable without connections")

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Nodes: "not json"})
	assert.Error(t, err)
}

func TestServer_ExecuteTurn(t *testing.T) {
	s, _ := newTestServer(t)
	flow := `{"nodes": ` + greetingNodes + `, "connections": ` + greetingConnections + `}`

	result, err := s.handleExecute(context.Background(), mcp.CallToolRequest{}, ExecuteArgs{
		Flow:      flow,
		Input:     "Sam",
		Variables: `{"lang": "en"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Sam", result.Response)
	assert.Equal(t, map[string]any{"lang": "en", "name": "Sam"}, result.Variables)

	_, err = s.handleExecute(context.Background(), mcp.CallToolRequest{}, ExecuteArgs{
		Flow:  flow,
		Input: strings.Repeat("x", 10_000),
	})
	assert.Error(t, err)

	_, err = s.handleExecute(context.Background(), mcp.CallToolRequest{}, ExecuteArgs{Flow: "{"})
	assert.Error(t, err)
}

func TestServer_GetFlowAndConverse(t *testing.T) {
	s, eng := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetFlow(ctx, callRequest("get_flow", map[string]any{"bot_id": "bot-1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	_, err = eng.Provision(ctx, "bot-1")
	require.NoError(t, err)

	var nodes []domain.Node
	require.NoError(t, json.Unmarshal([]byte(greetingNodes), &nodes))
	var connections []domain.Connection
	require.NoError(t, json.Unmarshal([]byte(greetingConnections), &connections))
	_, _, err = eng.UpdateFlow(ctx, "bot-1", domain.FlowUpdate{Nodes: nodes, Connections: connections})
	require.NoError(t, err)
	_, err = eng.Activate(ctx, "bot-1")
	require.NoError(t, err)

	res, err = s.handleGetFlow(ctx, callRequest("get_flow", map[string]any{"bot_id": "bot-1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var flow domain.Flow
	require.NoError(t, json.Unmarshal([]byte(text.Text), &flow))
	assert.Equal(t, 2, flow.Version)

	turn, err := s.handleConverse(ctx, mcp.CallToolRequest{}, ConverseArgs{BotID: "bot-1", ConversationID: "c1", Input: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ana", turn.Response)
}

func TestServer_NodeTypesResource(t *testing.T) {
	s, _ := newTestServer(t)

	contents, err := s.readNodeTypes(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, NodeTypesURI, text.URI)

	var infos []nodeTypeInfo
	require.NoError(t, json.Unmarshal([]byte(text.Text), &infos))
	require.Len(t, infos, len(domain.NodeTypes()))
	for _, info := range infos {
		assert.NotEmpty(t, info.Description, info.Type)
	}
}
