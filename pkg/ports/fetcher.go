package ports

import "context"

// APIRequest describes the outbound call of an api_call node.
type APIRequest struct {
	Method  string
	URL     string
	Headers map[string]string
}

// Fetcher performs HTTP requests on behalf of api_call nodes.
// Implementations must return an error for transport failures, non-2xx statuses
// and bodies that are not valid JSON.
type Fetcher interface {
	// Fetch executes the request and returns the decoded JSON body.
	Fetch(ctx context.Context, req APIRequest) (any, error)
}
