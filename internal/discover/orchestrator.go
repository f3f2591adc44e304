// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// Orchestrator fans a person name out to the primary search provider and
// both supplemental structured providers, merges their evidence, and
// decides the terminal classification.
type Orchestrator struct {
	Search        Searcher
	Supplementals []SupplementalProvider
	// Resolver performs batched label resolution for providers that return
	// raw entity ids. Nil disables resolution (raw ids are kept).
	Resolver LabelResolver
	Config   types.DiscoveryConfig
}

// LabelResolver resolves provider-internal entity ids to readable labels.
type LabelResolver interface {
	ResolveLabels(ctx context.Context, ids []string) (map[string]string, error)
}

// Discovery is the orchestrator's output: the terminal discovery record
// plus the structured context string handed to the synthesizer.
type Discovery struct {
	Person            types.PersonDiscovery
	StructuredContext string
}

// Discover runs the three-way fan-out. Only the primary search provider's
// errors propagate; a supplemental provider that errors is equivalent to
// that provider returning an empty result.
func (o *Orchestrator) Discover(ctx context.Context, name string, w io.Writer) (*Discovery, error) {
	type supplementalOutcome struct {
		name   string
		result ProviderResult
		err    error
	}

	primaryCh := make(chan struct {
		hits []types.SearchHit
		err  error
	}, 1)
	suppCh := make(chan supplementalOutcome, len(o.Supplementals))

	go func() {
		hits, err := o.Search.Search(ctx, discoveryQuery(name), o.Config.Depth, o.Config.MaxResults)
		primaryCh <- struct {
			hits []types.SearchHit
			err  error
		}{hits, err}
	}()

	// Provider goroutines never touch the shared writer; failures ride the
	// channel and are logged from this goroutine only.
	for _, p := range o.Supplementals {
		go func(p SupplementalProvider) {
			result, err := p.Discover(ctx, name)
			if err != nil {
				result = EmptyResult()
			}
			suppCh <- supplementalOutcome{name: p.Name(), result: result, err: err}
		}(p)
	}

	// The primary result alone decides the terminal classification.
	primary := <-primaryCh
	if primary.err != nil {
		return nil, fmt.Errorf("primary discovery: %w", primary.err)
	}

	relevant := relevantHits(name, primary.hits)

	discovery := types.PersonDiscovery{
		Name:       name,
		RawResults: primary.hits,
	}

	if IsFictional(relevant) {
		discovery.IsFictional = true
	} else if len(relevant) > 0 {
		discovery.IsVerified = true
	}

	primarySources := make([]types.Source, 0, len(relevant))
	for _, h := range relevant {
		primarySources = append(primarySources, sourceFromHit(h))
	}
	merged := primarySources

	// Await both supplemental providers regardless of the primary outcome;
	// either may be empty or failed.
	var wikidata *WikidataFacts
	var kgraph *KnowledgeGraphFacts
	var pending []string
	for range o.Supplementals {
		outcome := <-suppCh
		if outcome.err != nil {
			fmt.Fprintf(w, "warning: %s provider failed: %v\n", outcome.name, outcome.err)
		}
		if outcome.result.IsEmpty {
			continue
		}
		merged = append(merged, outcome.result.Sources...)
		if outcome.result.Wikidata != nil {
			wikidata = outcome.result.Wikidata
			pending = outcome.result.PendingLabels
		}
		if outcome.result.KnowledgeGraph != nil {
			kgraph = outcome.result.KnowledgeGraph
		}
	}

	// Resolve raw entity ids before building the context block. Resolution
	// failure falls back to the unresolved ids rather than failing the stage.
	if wikidata != nil && len(pending) > 0 && o.Resolver != nil {
		labels, err := o.Resolver.ResolveLabels(ctx, pending)
		if err != nil {
			fmt.Fprintf(w, "warning: label resolution failed, keeping raw ids: %v\n", err)
		}
		wikidata.ApplyLabels(labels)
	}

	discovery.Sources = reliability.Deduplicate(merged)
	discovery.Summary = summarize(relevant, wikidata, kgraph)
	if len(discovery.Sources) == 0 {
		// No evidence from any provider: not-found, even if the heuristic ran.
		discovery.IsVerified = false
	}

	return &Discovery{
		Person:            discovery,
		StructuredContext: joinContextBlocks(wikidata, kgraph),
	}, nil
}

// discoveryQuery shapes the primary search query for biographical evidence.
func discoveryQuery(name string) string {
	return fmt.Sprintf("%q biography life", name)
}

// relevantHits keeps hits that mention the person's surname, dropping
// unrelated filler the search provider pads short result sets with.
func relevantHits(name string, hits []types.SearchHit) []types.SearchHit {
	tokens := strings.Fields(strings.ToLower(name))
	if len(tokens) == 0 {
		return nil
	}
	last := tokens[len(tokens)-1]
	var relevant []types.SearchHit
	for _, h := range hits {
		text := strings.ToLower(h.Title + " " + h.Content)
		if strings.Contains(text, last) {
			relevant = append(relevant, h)
		}
	}
	return relevant
}

// sourceFromHit converts a raw search hit into a scored citation source.
func sourceFromHit(h types.SearchHit) types.Source {
	return types.Source{
		ID:               uuid.NewString(),
		Title:            h.Title,
		URL:              h.URL,
		Type:             reliability.Classify(h.URL),
		AccessDate:       time.Now().UTC(),
		ReliabilityScore: reliability.Score(h.URL, h.Content),
		ContentSnippet:   h.Content,
	}
}

// summarize picks the best short description available: structured
// descriptions first, else the highest-scored search hit's content.
func summarize(hits []types.SearchHit, wd *WikidataFacts, kg *KnowledgeGraphFacts) string {
	if wd != nil && wd.Description != "" {
		return wd.Description
	}
	if kg != nil && kg.Description != "" {
		return kg.Description
	}
	best := ""
	bestScore := -1.0
	for _, h := range hits {
		if h.Score > bestScore && h.Content != "" {
			best = h.Content
			bestScore = h.Score
		}
	}
	if len(best) > 300 {
		best = best[:300]
	}
	return strings.TrimSpace(best)
}

// joinContextBlocks concatenates the non-empty structured context blocks,
// resolved Wikidata facts first.
func joinContextBlocks(wd *WikidataFacts, kg *KnowledgeGraphFacts) string {
	var blocks []string
	if block := wd.ContextBlock(); block != "" {
		blocks = append(blocks, block)
	}
	if block := kg.ContextBlock(); block != "" {
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}
