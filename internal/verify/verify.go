// Package verify re-checks generated events against independent search
// evidence and folds the outcome back into each event's citations.
package verify

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// Confidence model constants. Empirically tuned; treat as calibration
// values, not derivable quantities.
const (
	dateMatchWeight    = 0.6
	bonusThreeMatches  = 0.3
	bonusTwoMatches    = 0.2
	bonusOneMatch      = 0.1
	bonusAmpleSources  = 0.1
	ampleSourceCount   = 6
	// defaultVerifiedThreshold applies when the research config leaves
	// MinConfidenceThreshold unset.
	defaultVerifiedThreshold = 0.7
	discrepancyWindow        = 10
	maxDiscrepancies         = 3
	searchResultsLimit       = 10
)

// batchSize is the number of events verified concurrently per batch.
const batchSize = 5

// interBatchDelay paces consecutive batches so the search provider is not
// hammered. Tests override it to avoid real sleeps.
var interBatchDelay = 2 * time.Second

// yearPattern matches a plausible four-digit year anywhere in text.
var yearPattern = regexp.MustCompile(`1[0-9]{3}|20[0-9]{2}`)

// majorEventTypes is the subset verified when VerifyAllEvents is off.
var majorEventTypes = map[types.EventType]bool{
	types.EventBirth:       true,
	types.EventDeath:       true,
	types.EventAchievement: true,
	types.EventCareer:      true,
}

// Searcher is the slice of the search provider verification needs.
type Searcher interface {
	Search(ctx context.Context, query string, depth types.SearchDepth, maxResults int) ([]types.SearchHit, error)
}

// Verifier re-checks event dates against search evidence.
type Verifier struct {
	Search Searcher
	Config types.ResearchConfig
}

// VerifyEvents verifies the timeline in fixed-size concurrent batches and
// returns the events in their original order along with the number that
// verified. Verification is best-effort: a failed search leaves the event
// untouched, and nothing here aborts the caller.
func (v *Verifier) VerifyEvents(ctx context.Context, personName string, events []types.HistoricalEvent, w io.Writer) ([]types.HistoricalEvent, int) {
	var candidates []types.HistoricalEvent
	for _, ev := range events {
		if v.Config.VerifyAllEvents || majorEventTypes[ev.Type] {
			candidates = append(candidates, ev)
		}
	}

	verified := make(map[string]types.EventVerification, len(candidates))
	var mu sync.Mutex

	for start := 0; start < len(candidates); start += batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "verification interrupted: %v\n", ctx.Err())
				return reemit(events, verified, w), countVerified(verified)
			case <-time.After(interBatchDelay):
			}
		}

		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		var wg sync.WaitGroup
		for _, ev := range candidates[start:end] {
			wg.Add(1)
			go func(ev types.HistoricalEvent) {
				defer wg.Done()
				result, err := v.verifyEvent(ctx, personName, ev)
				if err != nil {
					mu.Lock()
					fmt.Fprintf(w, "verification skipped for %q: %v\n", ev.Title, err)
					mu.Unlock()
					return
				}
				mu.Lock()
				verified[ev.ID] = result
				mu.Unlock()
			}(ev)
		}
		wg.Wait()
	}

	return reemit(events, verified, w), countVerified(verified)
}

// verifyEvent checks one event: a single search on name+title+date, a date
// agreement count over authoritative results, and a discrepancy scan for
// nearby conflicting years.
func (v *Verifier) verifyEvent(ctx context.Context, personName string, ev types.HistoricalEvent) (types.EventVerification, error) {
	query := fmt.Sprintf("%s %s %s", personName, ev.Title, ev.Date)
	hits, err := v.Search.Search(ctx, query, types.DepthBasic, searchResultsLimit)
	if err != nil {
		return types.EventVerification{}, fmt.Errorf("searching evidence: %w", err)
	}

	expectedYear := ev.Year()
	yearText := ""
	if expectedYear > 0 {
		yearText = fmt.Sprintf("%d", expectedYear)
	}

	totalAuthoritative := 0
	dateMatches := 0
	var matching []types.Source
	for _, hit := range hits {
		if !reliability.IsAuthoritative(hit.URL) {
			continue
		}
		totalAuthoritative++
		if containsDate(hit.Content, ev.Date, yearText) {
			dateMatches++
			matching = append(matching, types.Source{
				ID:               uuid.NewString(),
				Title:            hit.Title,
				URL:              hit.URL,
				Type:             reliability.Classify(hit.URL),
				AccessDate:       time.Now().UTC(),
				ReliabilityScore: reliability.Score(hit.URL, hit.Content),
				ContentSnippet:   hit.Content,
			})
		}
	}

	confidence := Confidence(dateMatches, totalAuthoritative)
	discrepancies := findDiscrepancies(hits, expectedYear)

	return types.EventVerification{
		Event:           ev.Title,
		Date:            ev.Date,
		IsVerified:      confidence >= v.threshold() && len(discrepancies) == 0,
		Confidence:      confidence,
		MatchingSources: matching,
		DatePrecision:   InferDatePrecision(ev.Date),
		Discrepancies:   discrepancies,
	}, nil
}

// threshold returns the configured verification gate, defaulting to 0.7
// when the preset leaves it unset.
func (v *Verifier) threshold() float64 {
	if v.Config.MinConfidenceThreshold > 0 {
		return v.Config.MinConfidenceThreshold
	}
	return defaultVerifiedThreshold
}

// Confidence computes the verification confidence from the date-agreement
// count and the authoritative result count, clamped to 1.0.
func Confidence(dateMatches, totalAuthoritative int) float64 {
	if totalAuthoritative == 0 {
		return 0
	}
	confidence := dateMatchWeight * float64(dateMatches) / float64(totalAuthoritative)
	switch {
	case dateMatches >= 3:
		confidence += bonusThreeMatches
	case dateMatches == 2:
		confidence += bonusTwoMatches
	case dateMatches == 1:
		confidence += bonusOneMatch
	}
	if totalAuthoritative >= ampleSourceCount {
		confidence += bonusAmpleSources
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// containsDate reports whether content mentions the literal date string or
// its extracted year.
func containsDate(content, date, year string) bool {
	folded := strings.ToLower(content)
	if date != "" && strings.Contains(folded, strings.ToLower(date)) {
		return true
	}
	return year != "" && strings.Contains(folded, year)
}

// findDiscrepancies collects up to three distinct messages about years that
// sit within the ±10-year window of the expected year but disagree with it.
func findDiscrepancies(hits []types.SearchHit, expectedYear int) []string {
	if expectedYear == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var messages []string
	for _, hit := range hits {
		for _, m := range yearPattern.FindAllString(hit.Content, -1) {
			year := 0
			for _, c := range m {
				year = year*10 + int(c-'0')
			}
			if year == expectedYear || seen[year] {
				continue
			}
			if year < expectedYear-discrepancyWindow || year > expectedYear+discrepancyWindow {
				continue
			}
			seen[year] = true
			messages = append(messages, fmt.Sprintf("source mentions %d, expected %d", year, expectedYear))
			if len(messages) >= maxDiscrepancies {
				return messages
			}
		}
	}
	return messages
}

// reemit walks the original slice order and applies each event's
// verification through the matching guard, so concurrent completion order
// never reorders the timeline.
func reemit(events []types.HistoricalEvent, verified map[string]types.EventVerification, w io.Writer) []types.HistoricalEvent {
	out := make([]types.HistoricalEvent, len(events))
	for i, ev := range events {
		result, ok := verified[ev.ID]
		if !ok {
			out[i] = ev
			continue
		}
		merged, applied := applyVerification(ev, result)
		if !applied {
			fmt.Fprintf(w, "verification echo mismatch for %q, keeping original citations\n", ev.Title)
		}
		out[i] = merged
	}
	return out
}

// applyVerification folds a verification into its event only when the
// echoed title and date match the event's own, after trimming and case
// folding. A mismatched echo leaves the event unchanged.
func applyVerification(ev types.HistoricalEvent, result types.EventVerification) (types.HistoricalEvent, bool) {
	if normalize(result.Event) != normalize(ev.Title) || normalize(result.Date) != normalize(ev.Date) {
		return ev, false
	}
	ev.DatePrecision = result.DatePrecision
	if len(result.MatchingSources) > 0 {
		ev.Sources = reliability.Deduplicate(append(result.MatchingSources, ev.Sources...))
	}
	return ev, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func countVerified(verified map[string]types.EventVerification) int {
	n := 0
	for _, result := range verified {
		if result.IsVerified {
			n++
		}
	}
	return n
}
