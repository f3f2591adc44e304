// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/biograph-engine/internal/httputil"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyClient queries the Tavily full-text search API. It is the primary
// discovery provider: unlike the supplemental adapters, its errors
// propagate, because without search evidence the pipeline cannot decide
// real/fictional/not-found.
type TavilyClient struct {
	APIKey string
	Client *http.Client
	// UserAgent is sent with every request.
	UserAgent string
}

// tavilyRequest is the request body for the Tavily search API.
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// tavilyResponse is the response body from the Tavily search API.
type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search issues one search query. Depth controls the provider-side
// quality/latency tradeoff; maxResults caps the hit count.
func (c *TavilyClient) Search(ctx context.Context, query string, depth types.SearchDepth, maxResults int) ([]types.SearchHit, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if depth == "" {
		depth = types.DepthBasic
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.APIKey,
		Query:       query,
		SearchDepth: string(depth),
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("search API rate limited after retries")
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned HTTP %d: %s", resp.StatusCode, string(b))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(tr.Results))
	for _, r := range tr.Results {
		hits = append(hits, types.SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return hits, nil
}
