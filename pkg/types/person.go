// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FilterMetadata holds the categorical tags the store's filtered queries
// operate on. It is assigned by the optional classification step; empty
// values mean "uncategorized".
type FilterMetadata struct {
	// Era is a broad period label (e.g. "modern", "19th-century", "ancient").
	Era string `json:"era,omitempty" yaml:"era,omitempty"`

	// Domain is the person's primary field (e.g. "science", "politics", "arts").
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Region is the person's primary geographic association.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Impact is a coarse significance label (e.g. "global", "national", "local").
	Impact string `json:"impact,omitempty" yaml:"impact,omitempty"`
}

// IsEmpty reports whether no metadata field is populated.
func (m FilterMetadata) IsEmpty() bool {
	return m.Era == "" && m.Domain == "" && m.Region == "" && m.Impact == ""
}

// Person is the persisted biographical record. The pipeline constructs it;
// the store assigns ID and CreatedAt at insert time if they are unset.
type Person struct {
	// ID is the store-assigned document identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the person's canonical name as researched.
	Name string `json:"name" yaml:"name"`

	// BirthDate is a free-form birth date, when known.
	BirthDate string `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`

	// DeathDate is a free-form death date, when known.
	DeathDate string `json:"death_date,omitempty" yaml:"death_date,omitempty"`

	// Summary is a short biographical overview.
	Summary string `json:"summary" yaml:"summary"`

	// Events is the chronological timeline produced by the pipeline.
	Events []HistoricalEvent `json:"events" yaml:"events"`

	// CreatedAt records when the person was first persisted.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// FilterMetadata holds the categorical tags used by filtered queries.
	FilterMetadata FilterMetadata `json:"filter_metadata" yaml:"filter_metadata"`

	// ViewCount tracks how often the record has been opened.
	ViewCount int `json:"view_count" yaml:"view_count"`

	// LastViewedAt records the most recent view, zero if never viewed.
	LastViewedAt time.Time `json:"last_viewed_at,omitempty" yaml:"last_viewed_at,omitempty"`
}

// ResearchSummary aggregates counts over a completed research run.
type ResearchSummary struct {
	// TotalEvents is the number of events in the final timeline.
	TotalEvents int `json:"total_events" yaml:"total_events"`

	// EventsWithSources is the number of events carrying at least one citation.
	EventsWithSources int `json:"events_with_sources" yaml:"events_with_sources"`

	// TotalSources is the size of the deduplicated source pool.
	TotalSources int `json:"total_sources" yaml:"total_sources"`

	// AuthoritativeSources counts pool sources matching the domain allow-list.
	AuthoritativeSources int `json:"authoritative_sources" yaml:"authoritative_sources"`
}

// VerifiedPerson is the pipeline's final output: the assembled person, the
// full deduplicated source pool, and run statistics.
type VerifiedPerson struct {
	Person          Person          `json:"person" yaml:"person"`
	AllSources      []Source        `json:"all_sources" yaml:"all_sources"`
	ResearchSummary ResearchSummary `json:"research_summary" yaml:"research_summary"`
}

// PersonDiscovery is the pipeline-internal outcome of the discovery stage.
// Its terminal states are mutually exclusive: verified-real, verified-
// fictional, or not-found (no sources means not-found).
type PersonDiscovery struct {
	// Name is the queried name.
	Name string `json:"name" yaml:"name"`

	// IsVerified reports whether the primary provider found real evidence.
	IsVerified bool `json:"is_verified" yaml:"is_verified"`

	// IsFictional reports whether the fictional-character heuristic fired.
	IsFictional bool `json:"is_fictional" yaml:"is_fictional"`

	// Summary is a short description assembled from the best evidence.
	Summary string `json:"summary" yaml:"summary"`

	// Sources is the merged, deduplicated source list from all providers.
	Sources []Source `json:"sources" yaml:"sources"`

	// RawResults keeps the primary provider's hits for later heuristics.
	RawResults []SearchHit `json:"raw_results,omitempty" yaml:"raw_results,omitempty"`
}
