package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeType_Valid(t *testing.T) {
	for _, nt := range domain.NodeTypes() {
		assert.True(t, nt.Valid(), "expected %q to be valid", nt)
	}
	assert.Len(t, domain.NodeTypes(), 7)
	assert.False(t, domain.NodeType("text").Valid())
	assert.False(t, domain.NodeType("").Valid())
}

func TestFlow_Next_FirstMatchWins(t *testing.T) {
	flow := &domain.Flow{
		Nodes: []domain.Node{{ID: "start"}, {ID: "a"}, {ID: "b"}},
		Connections: []domain.Connection{
			{ID: "c1", Source: "start", Target: "a"},
			{ID: "c2", Source: "start", Target: "b"},
		},
	}

	next, ok := flow.Next("start")
	require.True(t, ok)
	assert.Equal(t, "a", next.Target)

	_, ok = flow.Next("a")
	assert.False(t, ok)

	assert.Len(t, flow.Outgoing("start"), 2)
}

func TestDefaultFlow(t *testing.T) {
	flow := domain.DefaultFlow("bot-1")

	assert.Equal(t, "bot-1", flow.BotID)
	assert.Equal(t, 1, flow.Version)
	assert.False(t, flow.IsActive)

	start, ok := flow.Node(domain.StartNodeID)
	require.True(t, ok)
	assert.Equal(t, domain.NodeTypeMessage, start.Type)

	fallback, ok := flow.Node(domain.FallbackNodeID)
	require.True(t, ok)
	assert.Equal(t, domain.NodeTypeMessage, fallback.Type)
}

func TestFlow_JSONFieldNames(t *testing.T) {
	raw := `{
		"botId": "bot-1",
		"version": 3,
		"isActive": true,
		"nodes": [{
			"id": "start",
			"type": "api_call",
			"position": {"x": 1, "y": 2},
			"data": {
				"title": "Weather",
				"content": "Fetching",
				"variable": "weather",
				"apiUrl": "https://example.com/{{city}}",
				"apiMethod": "POST",
				"apiHeaders": {"X-Key": "abc"}
			}
		}],
		"connections": [{"id": "c1", "source": "start", "target": "end", "label": "next"}],
		"variables": [{"name": "city", "type": "string", "defaultValue": "Lisbon"}]
	}`

	var flow domain.Flow
	require.NoError(t, json.Unmarshal([]byte(raw), &flow))

	assert.Equal(t, 3, flow.Version)
	assert.True(t, flow.IsActive)
	node := flow.Nodes[0]
	assert.Equal(t, domain.NodeTypeAPICall, node.Type)
	assert.Equal(t, "https://example.com/{{city}}", node.Data.APIURL)
	assert.Equal(t, "POST", node.Data.APIMethod)
	assert.Equal(t, "abc", node.Data.APIHeaders["X-Key"])
	assert.Equal(t, map[string]any{"city": "Lisbon"}, flow.DefaultVariables())
}

func TestDecodeAction(t *testing.T) {
	t.Run("Email", func(t *testing.T) {
		payload, err := domain.DecodeAction(domain.Action{
			Type: domain.ActionSendEmail,
			Data: map[string]any{"to": "sam@example.com", "subject": "Hi", "body": "Hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.EmailPayload{To: "sam@example.com", Subject: "Hi", Body: "Hello"}, payload)
	})

	t.Run("Webhook With Headers", func(t *testing.T) {
		payload, err := domain.DecodeAction(domain.Action{
			Type: domain.ActionWebhook,
			Data: map[string]any{
				"url":     "https://hooks.example.com",
				"method":  "POST",
				"headers": map[string]any{"X-Token": "t"},
			},
		})
		require.NoError(t, err)
		hook, ok := payload.(domain.WebhookPayload)
		require.True(t, ok)
		assert.Equal(t, "https://hooks.example.com", hook.URL)
		assert.Equal(t, "t", hook.Headers["X-Token"])
	})

	t.Run("Set Variable", func(t *testing.T) {
		payload, err := domain.DecodeAction(domain.Action{
			Type: domain.ActionSetVariable,
			Data: map[string]any{"name": "vip", "value": true},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SetVariablePayload{Name: "vip", Value: true}, payload)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		_, err := domain.DecodeAction(domain.Action{Type: "teleport"})
		assert.ErrorIs(t, err, domain.ErrUnknownActionType)
	})
}

func TestCloneActions_Isolated(t *testing.T) {
	src := []domain.Action{{Type: domain.ActionRedirect, Data: map[string]any{"url": "/a"}}}
	cloned := domain.CloneActions(src)
	cloned[0].Data["url"] = "/b"

	assert.Equal(t, "/a", src[0].Data["url"])
	assert.Nil(t, domain.CloneActions(nil))
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "b") },
		OnAPICall:   func(context.Context, *domain.APIEvent) { calls = append(calls, "b-api") },
	}

	merged := a.Merge(b)
	merged.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	merged.OnAPICall(context.Background(), &domain.APIEvent{})

	assert.Equal(t, []string{"a", "b", "b-api"}, calls)
	assert.Nil(t, merged.OnAPIReturn)
}

func TestInvalidFlowError(t *testing.T) {
	err := &domain.InvalidFlowError{
		BotID:  "bot-1",
		Result: domain.ValidationResult{Errors: []string{"Flow contains cycles"}},
	}
	assert.ErrorIs(t, err, domain.ErrInvalidFlow)
	assert.Contains(t, err.Error(), "Flow contains cycles")
}
