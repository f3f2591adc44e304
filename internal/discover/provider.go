// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover resolves a person name across the search provider and
// the structured knowledge providers, and decides whether the subject is a
// real person, a fictional character, or unknown.
// See docs/ARCHITECTURE § Discovery.
package discover

import (
	"context"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// ProviderResult is the uniform outcome of one provider's lookup. A
// provider that cannot find or match the entity returns EmptyResult(), not
// an error; transport errors may be returned and are absorbed at the
// orchestrator for supplemental providers.
type ProviderResult struct {
	// Sources lists citations contributed by this provider.
	Sources []types.Source

	// ContextBlock is a deterministic human-readable summary of the facts
	// found, handed to the language model as context. It must never
	// contain raw provider-internal identifiers unless label resolution
	// failed outright.
	ContextBlock string

	// Wikidata holds structured facts when the Wikidata provider produced
	// them, nil otherwise.
	Wikidata *WikidataFacts

	// KnowledgeGraph holds structured facts when the Knowledge Graph
	// provider produced them, nil otherwise.
	KnowledgeGraph *KnowledgeGraphFacts

	// PendingLabels lists unresolved entity identifiers that need a
	// follow-up label-resolution call before the context block is built.
	PendingLabels []string

	// IsEmpty reports that the provider found nothing usable.
	IsEmpty bool
}

// EmptyResult is the sentinel for "provider found nothing". Supplemental
// provider failures always collapse to this value at the orchestrator.
func EmptyResult() ProviderResult {
	return ProviderResult{IsEmpty: true}
}

// SupplementalProvider is implemented by the structured-facts adapters.
type SupplementalProvider interface {
	Name() string
	Discover(ctx context.Context, name string) (ProviderResult, error)
}

// Searcher is the full-text search contract consumed by discovery,
// verification, and enrichment.
type Searcher interface {
	Search(ctx context.Context, query string, depth types.SearchDepth, maxResults int) ([]types.SearchHit, error)
}
