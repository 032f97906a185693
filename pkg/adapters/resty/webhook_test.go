package resty_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/resty"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_ThroughRegistry(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	reg := registry.NewRegistry()
	reg.Register(domain.ActionWebhook, resty.New().Webhook)

	err := reg.Dispatch(context.Background(), domain.Action{
		Type: domain.ActionWebhook,
		Data: map[string]any{"url": srv.URL, "body": map[string]any{"lead": "Sam"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{"lead": "Sam"}, gotBody)
}

func TestWebhook_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := resty.New()
	ctx := context.Background()

	assert.Error(t, f.Webhook(ctx, domain.WebhookPayload{URL: srv.URL}))
	assert.Error(t, f.Webhook(ctx, domain.WebhookPayload{}))
	assert.Error(t, f.Webhook(ctx, "not a payload"))
}
