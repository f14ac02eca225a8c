package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedOptimizer struct {
	query string
	err   error
}

func (f *fixedOptimizer) OptimizeQuery(ctx context.Context, question string) (string, error) {
	return f.query, f.err
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req tavilyRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) TavilyConfig {
	return TavilyConfig{APIKey: "test-key", BaseURL: url, TimeoutSeconds: 5}
}

func TestTavilyClient_SearchWeb(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results to documents", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			assert.Equal(t, "test-key", req.APIKey)
			assert.Equal(t, "raft consensus", req.Query)
			assert.Equal(t, 3, req.MaxResults)
			assert.False(t, req.IncludeAnswer)

			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{
					{"title": "Raft paper", "url": "https://raft.github.io", "content": "raft overview"},
					{"title": "empty", "url": "https://x", "content": ""},
				},
			})
		})

		client := NewTavilyClient(testConfig(srv.URL), nil)
		docs, err := client.SearchWeb(ctx, "raft consensus", 3)
		require.NoError(t, err)
		// content-less results are dropped
		require.Len(t, docs, 1)
		assert.Equal(t, "raft overview", docs[0].Content)
		assert.Equal(t, "https://raft.github.io", docs[0].Metadata["source"])
		assert.Equal(t, "Raft paper", docs[0].Metadata["title"])
	})

	t.Run("uses optimized query when available", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			assert.Equal(t, "raft leader election", req.Query)
			json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
		})

		client := NewTavilyClient(testConfig(srv.URL), &fixedOptimizer{query: "raft leader election"})
		_, err := client.SearchWeb(ctx, "how does raft pick a leader?", 3)
		require.NoError(t, err)
	})

	t.Run("optimizer failure falls back to original question", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			assert.Equal(t, "original question", req.Query)
			json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
		})

		client := NewTavilyClient(testConfig(srv.URL), &fixedOptimizer{err: fmt.Errorf("model down")})
		_, err := client.SearchWeb(ctx, "original question", 3)
		require.NoError(t, err)
	})

	t.Run("invalid max results falls back to default", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			assert.Equal(t, 3, req.MaxResults)
			json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
		})

		client := NewTavilyClient(testConfig(srv.URL), nil)
		_, err := client.SearchWeb(ctx, "q", 0)
		require.NoError(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		client := NewTavilyClient(TavilyConfig{BaseURL: "http://unused", TimeoutSeconds: 1}, nil)
		_, err := client.SearchWeb(ctx, "q", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("empty query", func(t *testing.T) {
		client := NewTavilyClient(testConfig("http://unused"), nil)
		_, err := client.SearchWeb(ctx, "", 3)
		require.Error(t, err)
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})

		client := NewTavilyClient(testConfig(srv.URL), nil)
		_, err := client.SearchWeb(ctx, "q", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("malformed response body", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req tavilyRequest) {
			fmt.Fprint(w, "not json")
		})

		client := NewTavilyClient(testConfig(srv.URL), nil)
		_, err := client.SearchWeb(ctx, "q", 3)
		require.Error(t, err)
	})
}
