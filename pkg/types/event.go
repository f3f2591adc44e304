// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "regexp"

// EventType categorizes a life event.
type EventType string

const (
	EventBirth       EventType = "birth"
	EventChildhood   EventType = "childhood"
	EventEducation   EventType = "education"
	EventCareer      EventType = "career"
	EventPersonal    EventType = "personal"
	EventAchievement EventType = "achievement"
	EventDeath       EventType = "death"
	EventHistorical  EventType = "historical"
)

// ValidEventTypes is the set of accepted EventType values.
var ValidEventTypes = map[EventType]bool{
	EventBirth:       true,
	EventChildhood:   true,
	EventEducation:   true,
	EventCareer:      true,
	EventPersonal:    true,
	EventAchievement: true,
	EventDeath:       true,
	EventHistorical:  true,
}

// DatePrecision describes how exactly an event date is known.
type DatePrecision string

const (
	PrecisionExact       DatePrecision = "exact"
	PrecisionMonthYear   DatePrecision = "month_year"
	PrecisionYearOnly    DatePrecision = "year_only"
	PrecisionApproximate DatePrecision = "approximate"
	PrecisionDecade      DatePrecision = "decade"
	PrecisionUnknown     DatePrecision = "unknown"
)

// ValidDatePrecisions is the set of accepted DatePrecision values.
var ValidDatePrecisions = map[DatePrecision]bool{
	PrecisionExact:       true,
	PrecisionMonthYear:   true,
	PrecisionYearOnly:    true,
	PrecisionApproximate: true,
	PrecisionDecade:      true,
	PrecisionUnknown:     true,
}

// yearPattern matches a plausible historical year: 1000-1999 or 2000-2099.
var yearPattern = regexp.MustCompile(`1[0-9]{3}|20[0-9]{2}`)

// HistoricalEvent is one entry in a person's timeline. The ID stays stable
// across pipeline stages: verification and enrichment look events up by ID,
// never by slice position, because stages filter and reorder working copies.
type HistoricalEvent struct {
	// ID is a stable identifier assigned at synthesis time.
	ID string `json:"id" yaml:"id"`

	// Date is the event date as free-form human-readable text
	// (e.g. "March 14, 1879", "circa 1850", "1870s").
	Date string `json:"date" yaml:"date"`

	// Title is a short label for the event.
	Title string `json:"title" yaml:"title"`

	// Description is a one-to-three sentence account of the event.
	Description string `json:"description" yaml:"description"`

	// Citation is a legacy single-string citation kept for imported records.
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`

	// SourceURL is a legacy single source URL kept for imported records.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Type categorizes the event.
	Type EventType `json:"type" yaml:"type"`

	// DatePrecision records how exactly the date is known.
	DatePrecision DatePrecision `json:"date_precision" yaml:"date_precision"`

	// Sources lists the citations backing this event.
	Sources []Source `json:"sources" yaml:"sources"`
}

// Year returns the first four-digit year found in the event date, or 0 when
// the date carries no recognizable year.
func (e HistoricalEvent) Year() int {
	return YearOf(e.Date)
}

// YearOf extracts the first four-digit year from a free-form date string,
// or 0 when none is present.
func YearOf(date string) int {
	m := yearPattern.FindString(date)
	if m == "" {
		return 0
	}
	year := 0
	for _, c := range m {
		year = year*10 + int(c-'0')
	}
	return year
}

// EventVerification is the transient outcome of re-checking one event
// against independent search evidence. It is folded into the event's
// Sources and DatePrecision, then discarded.
type EventVerification struct {
	// Event echoes the title of the event that was verified.
	Event string `json:"event" yaml:"event"`

	// Date echoes the date string that was verified.
	Date string `json:"date" yaml:"date"`

	// IsVerified reports whether confidence cleared the threshold with no
	// date discrepancies.
	IsVerified bool `json:"is_verified" yaml:"is_verified"`

	// Confidence is the verification confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// MatchingSources lists authoritative sources whose content agreed
	// with the event date.
	MatchingSources []Source `json:"matching_sources" yaml:"matching_sources"`

	// DatePrecision is inferred from the lexical shape of the input date.
	DatePrecision DatePrecision `json:"date_precision" yaml:"date_precision"`

	// Discrepancies lists up to three conflicting-year messages.
	Discrepancies []string `json:"discrepancies" yaml:"discrepancies"`
}
