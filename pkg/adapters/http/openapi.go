package http

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var openapiSpec []byte

var apiVersion = "unknown"

func init() {
	if doc, err := openapi3.NewLoader().LoadFromData(openapiSpec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// requestValidator checks requests against the OpenAPI document before they reach a handler.
type requestValidator struct {
	router routers.Router
}

func newRequestValidator() (*requestValidator, error) {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}
	return &requestValidator{router: router}, nil
}

// middleware rejects documented requests that do not match their schema with 400.
// Undocumented routes (such as /metrics) pass through.
func (v *requestValidator) middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := v.router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("request rejected by schema", "method", r.Method, "path", r.URL.Path, "err", err)
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
