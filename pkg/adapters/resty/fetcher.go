package resty

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/chatflow/pkg/ports"
	backend "github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds requests when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Fetcher implements ports.Fetcher using resty.
// It performs exactly one attempt per call; api_call nodes are not retried.
type Fetcher struct {
	client *backend.Client
}

// Option configures the Fetcher.
type Option func(*backend.Client)

// WithTimeout sets the client-level request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *backend.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithDebug enables resty's request/response dumps.
func WithDebug(debug bool) Option {
	return func(c *backend.Client) {
		c.SetDebug(debug)
	}
}

// New creates a Fetcher with its own resty client.
func New(opts ...Option) *Fetcher {
	client := backend.New().
		SetTimeout(DefaultTimeout).
		SetRetryCount(0)

	for _, opt := range opts {
		opt(client)
	}
	return &Fetcher{client: client}
}

// NewFromClient wraps an existing resty client.
func NewFromClient(client *backend.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch executes the request and decodes the JSON body.
// Non-2xx statuses and undecodable bodies are errors.
func (f *Fetcher) Fetch(ctx context.Context, req ports.APIRequest) (any, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(req.Headers).
		Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status())
	}

	var body any
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return body, nil
}
