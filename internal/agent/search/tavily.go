package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentic-rag/server/internal/agent/model"
	logx "github.com/agentic-rag/server/pkg/logger"
)

type TavilyConfig struct {
	APIKey         string `envconfig:"TAVILY_API_KEY"`
	BaseURL        string `envconfig:"TAVILY_BASE_URL" default:"https://api.tavily.com"`
	TimeoutSeconds int    `envconfig:"TAVILY_TIMEOUT_SECONDS" default:"15"`
}

// QueryOptimizer condenses a conversational question into a keyword
// query before it is sent to the search API. Optional; when nil the
// question is sent as-is.
type QueryOptimizer interface {
	OptimizeQuery(ctx context.Context, question string) (string, error)
}

// TavilyClient searches the web through the Tavily REST API and maps
// results into documents the grading pipeline can consume.
type TavilyClient struct {
	cfg       TavilyConfig
	http      *http.Client
	optimizer QueryOptimizer
}

var _ model.WebSearcher = (*TavilyClient)(nil)

func NewTavilyClient(cfg TavilyConfig, optimizer QueryOptimizer) *TavilyClient {
	return &TavilyClient{
		cfg:       cfg,
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		optimizer: optimizer,
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// SearchWeb queries Tavily and returns results as documents. The query
// optimizer is best effort: if it fails the original question is used.
func (c *TavilyClient) SearchWeb(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: API key is not configured")
	}
	if query == "" {
		return nil, fmt.Errorf("tavily: query is empty")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	searchQuery := query
	if c.optimizer != nil {
		optimized, err := c.optimizer.OptimizeQuery(ctx, query)
		if err != nil || optimized == "" {
			logx.Warn().Err(err).Msg("Search query optimization failed, using original question")
		} else {
			searchQuery = optimized
		}
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        c.cfg.APIKey,
		Query:         searchQuery,
		MaxResults:    maxResults,
		IncludeAnswer: false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tavily: unexpected status %d: %s", resp.StatusCode, payload)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decoding response: %w", err)
	}

	docs := make([]model.Document, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Content == "" {
			continue
		}
		docs = append(docs, model.Document{
			Content: r.Content,
			Metadata: map[string]string{
				"source": r.URL,
				"title":  r.Title,
			},
		})
	}

	logx.Debug().Str("query", searchQuery).Int("results", len(docs)).Msg("Web search completed")
	return docs, nil
}
