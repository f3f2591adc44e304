// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the biograph-engine pipeline.
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

import "time"

// SourceType classifies the kind of publication a citation points at.
type SourceType string

const (
	SourceEncyclopedia   SourceType = "encyclopedia"
	SourceNews           SourceType = "news"
	SourceAcademic       SourceType = "academic"
	SourceBiography      SourceType = "biography"
	SourceOfficial       SourceType = "official"
	SourceArchive        SourceType = "archive"
	SourceWikidata       SourceType = "wikidata"
	SourceKnowledgeGraph SourceType = "knowledge_graph"
	SourceUnknown        SourceType = "unknown"
)

// Source is a single citation backing a biographical claim. Sources are
// value types: stages that attach a quote or deep link produce a copy via
// WithQuote/WithDeepLink rather than mutating in place.
type Source struct {
	// ID is a stable identifier assigned when the source is first collected.
	ID string `json:"id" yaml:"id"`

	// Title is the page or article title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical location of the source.
	URL string `json:"url" yaml:"url"`

	// Type classifies the source (encyclopedia, news, academic, ...).
	Type SourceType `json:"type" yaml:"type"`

	// Publisher is the publishing organization, when known.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// Author is the article author, when known.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishDate is the publication date as reported by the provider.
	PublishDate string `json:"publish_date,omitempty" yaml:"publish_date,omitempty"`

	// AccessDate records when the pipeline retrieved the source.
	AccessDate time.Time `json:"access_date" yaml:"access_date"`

	// ReliabilityScore is a value in [0,1] assigned by the reliability model.
	ReliabilityScore float64 `json:"reliability_score" yaml:"reliability_score"`

	// ContentSnippet is the raw text excerpt returned by the search provider.
	ContentSnippet string `json:"content_snippet,omitempty" yaml:"content_snippet,omitempty"`

	// RelevantQuote is a short passage chosen to support the citing event.
	RelevantQuote string `json:"relevant_quote,omitempty" yaml:"relevant_quote,omitempty"`

	// DeepLinkURL jumps a reader directly to the cited passage. Before
	// enrichment it may hold an unresolved hint (a fragment or a slug).
	DeepLinkURL string `json:"deep_link_url,omitempty" yaml:"deep_link_url,omitempty"`
}

// WithQuote returns a copy of the source with the relevant quote set.
func (s Source) WithQuote(quote string) Source {
	s.RelevantQuote = quote
	return s
}

// WithDeepLink returns a copy of the source with the deep link resolved.
func (s Source) WithDeepLink(link string) Source {
	s.DeepLinkURL = link
	return s
}

// SearchHit is one raw result from the full-text search provider.
type SearchHit struct {
	Title   string  `json:"title" yaml:"title"`
	URL     string  `json:"url" yaml:"url"`
	Content string  `json:"content" yaml:"content"`
	Score   float64 `json:"score" yaml:"score"`
}
