// Package enrich tops up thin citation lists with supplementary searches
// and prepares every citation's quote and deep link for presentation.
package enrich

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// minSourcesThreshold is the citation count below which an event gets a
// supplementary search.
const minSourcesThreshold = 2

const searchResultsLimit = 5

// Searcher is the slice of the search provider enrichment needs.
type Searcher interface {
	Search(ctx context.Context, query string, depth types.SearchDepth, maxResults int) ([]types.SearchHit, error)
}

// Enricher fills citation gaps left after verification.
type Enricher struct {
	Search Searcher
	Config types.ResearchConfig
}

// EnrichEvents issues one supplementary search per under-cited event,
// merges the new sources, and runs citation preparation over every event.
// A failed search for one event never disturbs the others: that event
// simply keeps its pre-enrichment citations.
func (e *Enricher) EnrichEvents(ctx context.Context, personName string, events []types.HistoricalEvent, w io.Writer) []types.HistoricalEvent {
	out := make([]types.HistoricalEvent, len(events))
	for i, ev := range events {
		if e.needsEnrichment(ev) {
			enriched, err := e.enrichEvent(ctx, personName, ev)
			if err != nil {
				fmt.Fprintf(w, "enrichment skipped for %q: %v\n", ev.Title, err)
			} else {
				ev = enriched
			}
		}
		out[i] = prepareCitations(ev)
	}
	return out
}

// needsEnrichment applies the source-count gate. With EnrichLowConfidenceOnly
// set, only events below the minimum threshold are topped up; otherwise any
// event short of the per-event maximum is.
func (e *Enricher) needsEnrichment(ev types.HistoricalEvent) bool {
	if e.Config.EnrichLowConfidenceOnly {
		return len(ev.Sources) < minSourcesThreshold
	}
	max := e.Config.MaxSourcesPerEvent
	if max <= 0 {
		max = minSourcesThreshold
	}
	return len(ev.Sources) < max
}

// enrichEvent merges supplementary search results into the event's sources,
// deduplicates by URL, and re-ranks down to the per-event maximum.
func (e *Enricher) enrichEvent(ctx context.Context, personName string, ev types.HistoricalEvent) (types.HistoricalEvent, error) {
	query := fmt.Sprintf("%s %s %s", personName, ev.Title, ev.Date)
	hits, err := e.Search.Search(ctx, query, types.DepthBasic, searchResultsLimit)
	if err != nil {
		return ev, fmt.Errorf("supplementary search: %w", err)
	}

	merged := ev.Sources
	for _, hit := range hits {
		merged = append(merged, types.Source{
			ID:               uuid.NewString(),
			Title:            hit.Title,
			URL:              hit.URL,
			Type:             reliability.Classify(hit.URL),
			AccessDate:       time.Now().UTC(),
			ReliabilityScore: reliability.Score(hit.URL, hit.Content),
			ContentSnippet:   hit.Content,
		})
	}
	merged = reliability.Deduplicate(merged)

	max := e.Config.MaxSourcesPerEvent
	if max > 0 && len(merged) > max {
		merged = reliability.TopN(merged, max)
	}

	ev.Sources = merged
	return ev, nil
}

// prepareCitations selects the display quote and resolves the deep link for
// every source of the event. Runs for enriched and untouched events alike.
func prepareCitations(ev types.HistoricalEvent) types.HistoricalEvent {
	prepared := make([]types.Source, len(ev.Sources))
	for i, src := range ev.Sources {
		quote := SelectQuote(src)
		link := ResolveDeepLink(src, src.DeepLinkURL, quote)
		prepared[i] = src.WithQuote(quote).WithDeepLink(link)
	}
	ev.Sources = prepared
	return ev
}
