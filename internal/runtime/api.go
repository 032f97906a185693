package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
)

// callAPI performs the request of an api_call node. Failures never escape:
// they become the MsgAPIFailed response and leave the variables untouched.
func (e *Engine) callAPI(ctx context.Context, logger *slog.Logger, flow *domain.Flow, node *domain.Node, vars map[string]any) outcome {
	req := ports.APIRequest{
		Method:  strings.ToUpper(strings.TrimSpace(node.Data.APIMethod)),
		URL:     Interpolate(node.Data.APIURL, vars),
		Headers: map[string]string{"Content-Type": "application/json"},
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	for k, v := range node.Data.APIHeaders {
		req.Headers[k] = v
	}

	event := &domain.APIEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAPICall, FlowID: flow.ID},
		NodeID:    node.ID,
		Method:    req.Method,
		URL:       req.URL,
	}
	if e.hooks.OnAPICall != nil {
		e.hooks.OnAPICall(ctx, event)
	}

	started := time.Now()
	body, err := e.fetch(ctx, req)

	if e.hooks.OnAPIReturn != nil {
		ret := *event
		ret.Timestamp = time.Now()
		ret.Type = domain.EventAPIReturn
		ret.Duration = time.Since(started)
		ret.IsError = err != nil
		e.hooks.OnAPIReturn(ctx, &ret)
	}

	if err != nil {
		logger.Warn("api call failed", "node_id", node.ID, "method", req.Method, "url", req.URL, "err", err)
		return outcome{response: domain.MsgAPIFailed}
	}

	out := outcome{response: domain.MsgAPISuccess}
	if node.Data.Variable != "" {
		out.set = map[string]any{node.Data.Variable: body}
	}
	return out
}

func (e *Engine) fetch(ctx context.Context, req ports.APIRequest) (body any, err error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	if req.URL == "" {
		return nil, fmt.Errorf("api_call node has no url")
	}

	// Fetcher panics are reported as a failed call.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.apiTimeout)
	defer cancel()
	return e.fetcher.Fetch(ctx, req)
}
