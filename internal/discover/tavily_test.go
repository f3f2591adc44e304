package discover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

func TestTavilySearch(t *testing.T) {
	var gotBody tavilyRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(tavilyResponse{
			Results: []tavilyResult{
				{Title: "Ada Lovelace", URL: "https://en.wikipedia.org/wiki/Ada_Lovelace", Content: "born 1815", Score: 0.97},
				{Title: "Lovelace letters", URL: "https://archive.org/lovelace", Content: "correspondence", Score: 0.7},
			},
		})
	}))
	defer ts.Close()

	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	defer func() { tavilyAPIBase = old }()

	c := &TavilyClient{APIKey: "tv_test", Client: ts.Client()}
	hits, err := c.Search(context.Background(), `"Ada Lovelace" biography`, types.DepthAdvanced, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].URL != "https://en.wikipedia.org/wiki/Ada_Lovelace" {
		t.Errorf("hit URL = %q", hits[0].URL)
	}
	if gotBody.SearchDepth != "advanced" || gotBody.MaxResults != 5 {
		t.Errorf("request depth/max = %q/%d, want advanced/5", gotBody.SearchDepth, gotBody.MaxResults)
	}
	if gotBody.APIKey != "tv_test" {
		t.Errorf("api key not sent")
	}
}

func TestTavilySearchEmptyQuery(t *testing.T) {
	c := &TavilyClient{}
	if _, err := c.Search(context.Background(), "", types.DepthBasic, 5); err == nil {
		t.Error("empty query should error")
	}
}

func TestTavilySearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	defer func() { tavilyAPIBase = old }()

	c := &TavilyClient{APIKey: "bad", Client: ts.Client()}
	if _, err := c.Search(context.Background(), "query", types.DepthBasic, 5); err == nil {
		t.Error("HTTP 401 should surface as an error")
	}
}

func TestTavilySearchDefaults(t *testing.T) {
	var gotBody tavilyRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(tavilyResponse{})
	}))
	defer ts.Close()

	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	defer func() { tavilyAPIBase = old }()

	c := &TavilyClient{Client: ts.Client()}
	if _, err := c.Search(context.Background(), "query", "", 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotBody.SearchDepth != "basic" || gotBody.MaxResults != 10 {
		t.Errorf("defaults = %q/%d, want basic/10", gotBody.SearchDepth, gotBody.MaxResults)
	}
}
