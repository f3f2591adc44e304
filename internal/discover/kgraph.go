// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/biograph-engine/internal/httputil"
	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// kgraphAPIBase is the Google Knowledge Graph Search endpoint. Declared as
// a var so tests can substitute an httptest server.
var kgraphAPIBase = "https://kgsearch.googleapis.com/v1/entities:search"

// KnowledgeGraphFacts is the structured-fact bundle from the Knowledge
// Graph API.
type KnowledgeGraphFacts struct {
	Name                string   `json:"name" yaml:"name"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	DetailedDescription string   `json:"detailed_description,omitempty" yaml:"detailed_description,omitempty"`
	URL                 string   `json:"url,omitempty" yaml:"url,omitempty"`
	Types               []string `json:"types,omitempty" yaml:"types,omitempty"`
	ResultScore         float64  `json:"result_score,omitempty" yaml:"result_score,omitempty"`
}

// IsEmpty reports whether no informative field is populated.
func (f *KnowledgeGraphFacts) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Description == "" && f.DetailedDescription == ""
}

// ContextBlock renders the facts as a deterministic human-readable block.
func (f *KnowledgeGraphFacts) ContextBlock() string {
	if f.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Structured facts (Knowledge Graph):\n")
	if f.Name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", f.Name)
	}
	if f.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", f.Description)
	}
	if f.DetailedDescription != "" {
		fmt.Fprintf(&b, "- Overview: %s\n", f.DetailedDescription)
	}
	return strings.TrimRight(b.String(), "\n")
}

// KGraphClient queries the Google Knowledge Graph Search API. It is a
// supplemental provider: the orchestrator converts its failures to an
// empty result.
type KGraphClient struct {
	APIKey    string
	Client    *http.Client
	UserAgent string
}

// Name returns the provider identifier.
func (c *KGraphClient) Name() string { return "knowledge_graph" }

// Discover looks the name up in the Knowledge Graph, restricted to Person
// entities, and returns structured facts plus a citation source for the
// entity's reference article when one is linked.
func (c *KGraphClient) Discover(ctx context.Context, name string) (ProviderResult, error) {
	if c.APIKey == "" {
		return EmptyResult(), nil
	}

	params := url.Values{
		"query":  {name},
		"types":  {"Person"},
		"limit":  {"5"},
		"key":    {c.APIKey},
		"indent": {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kgraphAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return EmptyResult(), fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return EmptyResult(), fmt.Errorf("Knowledge Graph API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return EmptyResult(), fmt.Errorf("Knowledge Graph API returned HTTP %d", resp.StatusCode)
	}

	var kr kgResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		return EmptyResult(), fmt.Errorf("parsing Knowledge Graph response: %w", err)
	}

	element := bestKGMatch(name, kr.ItemListElement)
	if element == nil {
		return EmptyResult(), nil
	}

	facts := &KnowledgeGraphFacts{
		Name:                element.Result.Name,
		Description:         element.Result.Description,
		DetailedDescription: element.Result.DetailedDescription.ArticleBody,
		URL:                 element.Result.URL,
		Types:               element.Result.Types,
		ResultScore:         element.ResultScore,
	}
	if facts.IsEmpty() {
		return EmptyResult(), nil
	}

	var sources []types.Source
	if articleURL := element.Result.DetailedDescription.URL; articleURL != "" {
		sources = append(sources, types.Source{
			ID:               "kg-" + reliability.NormalizeURL(articleURL),
			Title:            element.Result.Name,
			URL:              articleURL,
			Type:             types.SourceKnowledgeGraph,
			AccessDate:       time.Now().UTC(),
			ReliabilityScore: reliability.Score(articleURL, facts.DetailedDescription),
			ContentSnippet:   facts.DetailedDescription,
		})
	}

	return ProviderResult{
		Sources:        sources,
		KnowledgeGraph: facts,
	}, nil
}

// bestKGMatch picks the highest-scored Person element whose name matches,
// with a last-name-only fallback. Elements that are determinably not a
// Person are skipped.
func bestKGMatch(name string, elements []kgElement) *kgElement {
	folded := strings.ToLower(strings.TrimSpace(name))
	tokens := strings.Fields(folded)
	last := ""
	if len(tokens) > 1 {
		last = tokens[len(tokens)-1]
	}

	var fallback *kgElement
	for i := range elements {
		el := &elements[i]
		if !isPersonType(el.Result.Types) {
			continue
		}
		candidate := strings.ToLower(el.Result.Name)
		if candidate == folded {
			return el
		}
		if fallback == nil && last != "" && strings.Contains(candidate, last) {
			fallback = el
		}
	}
	return fallback
}

// isPersonType accepts elements typed Person, or untyped elements (the
// API sometimes omits types for obscure entities).
func isPersonType(entityTypes []string) bool {
	if len(entityTypes) == 0 {
		return true
	}
	for _, t := range entityTypes {
		if t == "Person" {
			return true
		}
	}
	return false
}

// Knowledge Graph Search API JSON structures.

type kgResponse struct {
	ItemListElement []kgElement `json:"itemListElement"`
}

type kgElement struct {
	Result      kgResult `json:"result"`
	ResultScore float64  `json:"resultScore"`
}

type kgResult struct {
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Types               []string      `json:"@type"`
	URL                 string        `json:"url"`
	DetailedDescription kgDescription `json:"detailedDescription"`
}

type kgDescription struct {
	ArticleBody string `json:"articleBody"`
	URL         string `json:"url"`
}
