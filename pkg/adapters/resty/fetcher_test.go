package resty_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/resty"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Success(t *testing.T) {
	var gotMethod, gotHeader, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"temperature": 21.5, "tags": ["sunny"]}`))
	}))
	defer srv.Close()

	f := resty.New()
	body, err := f.Fetch(context.Background(), ports.APIRequest{
		Method:  "POST",
		URL:     srv.URL,
		Headers: map[string]string{"X-Api-Key": "secret", "Content-Type": "application/json"},
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"temperature": 21.5, "tags": []any{"sunny"}}, body)
}

func TestFetcher_Failures(t *testing.T) {
	t.Run("Non-2xx Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "boom"}`))
		}))
		defer srv.Close()

		_, err := resty.New().Fetch(context.Background(), ports.APIRequest{Method: "GET", URL: srv.URL})
		assert.Error(t, err)
	})

	t.Run("Non-JSON Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		_, err := resty.New().Fetch(context.Background(), ports.APIRequest{Method: "GET", URL: srv.URL})
		assert.Error(t, err)
	})

	t.Run("Unreachable Host", func(t *testing.T) {
		_, err := resty.New(resty.WithTimeout(time.Second)).Fetch(context.Background(), ports.APIRequest{
			Method: "GET",
			URL:    "http://127.0.0.1:1/unreachable",
		})
		assert.Error(t, err)
	})

	t.Run("Context Deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := resty.New().Fetch(ctx, ports.APIRequest{Method: "GET", URL: srv.URL})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}
