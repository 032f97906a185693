package resty

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Webhook performs webhook actions. It is registered as the handler for
// domain.ActionWebhook in an action registry.
func (f *Fetcher) Webhook(ctx context.Context, payload any) error {
	hook, ok := payload.(domain.WebhookPayload)
	if !ok {
		return fmt.Errorf("unexpected webhook payload %T", payload)
	}
	if hook.URL == "" {
		return fmt.Errorf("webhook action has no url")
	}

	method := strings.ToUpper(hook.Method)
	if method == "" {
		method = "POST"
	}

	req := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(hook.Headers)
	if hook.Body != nil {
		req.SetBody(hook.Body)
	}

	resp, err := req.Execute(method, hook.URL)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}
