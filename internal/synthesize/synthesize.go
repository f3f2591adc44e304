// Package synthesize turns discovery evidence into a structured biographical
// timeline via a generative model, including repair of truncated responses.
package synthesize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// ErrFictionalRefusal is returned when the model emits the refusal token
// instead of a timeline. Callers translate it to their own fictional-subject
// error; it is never retried.
var ErrFictionalRefusal = errors.New("model refused: subject is fictional")

const (
	timelineMaxTokens   = 8192
	timelineTemperature = 0.3
	defaultMaxRetries   = 3
)

// backoffBase controls the base duration for exponential backoff between
// generation attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Synthesizer generates a Person timeline from a context document.
type Synthesizer struct {
	Backend Backend
	Config  types.AIConfig
}

// aiTimeline is the decode target for the generation response. Every field
// is optional so a repaired-but-partial document still decodes; validation
// happens during conversion, not during decoding.
type aiTimeline struct {
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	BirthDate string    `json:"birth_date"`
	DeathDate string    `json:"death_date"`
	Events    []aiEvent `json:"events"`
}

type aiEvent struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Date          string   `json:"date"`
	Type          string   `json:"type"`
	DatePrecision string   `json:"date_precision"`
	SourceURLs    []string `json:"source_urls"`
}

// Synthesize asks the model for the event timeline and assembles a Person.
// Event citations are resolved against pool: URLs the model emits that are
// not in the pool are dropped rather than trusted.
func (s *Synthesizer) Synthesize(ctx context.Context, name, contextDocument string, pool []types.Source) (types.Person, error) {
	prompt, err := renderTimelinePrompt(name, contextDocument)
	if err != nil {
		return types.Person{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := s.callWithRetry(ctx, timelineSystemPrompt, prompt, timelineMaxTokens, timelineTemperature)
	if err != nil {
		return types.Person{}, err
	}

	if strings.Contains(raw, fictionalRefusalToken) {
		return types.Person{}, ErrFictionalRefusal
	}

	text := StripCodeFences(raw)
	text = SliceToBraces(text)
	text = RepairTruncatedJSON(text)

	var timeline aiTimeline
	if err := json.Unmarshal([]byte(text), &timeline); err != nil {
		return types.Person{}, fmt.Errorf("parsing generation response: %w", err)
	}
	if len(timeline.Events) == 0 {
		return types.Person{}, fmt.Errorf("generation response contained no events")
	}

	person := types.Person{
		Name:      name,
		Summary:   timeline.Summary,
		BirthDate: timeline.BirthDate,
		DeathDate: timeline.DeathDate,
		Events:    convertEvents(timeline.Events, pool),
	}
	if timeline.Name != "" {
		person.Name = timeline.Name
	}
	return person, nil
}

// callWithRetry calls the backend with exponential backoff. The refusal
// token is a successful generation, not an error, so it passes through.
func (s *Synthesizer) callWithRetry(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error) {
	maxRetries := s.Config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := s.Backend.Generate(ctx, system, prompt, maxTokens, temperature)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// convertEvents validates model events and resolves their citations against
// the collected source pool. Unknown enum values are coerced rather than
// rejected: an odd type becomes "historical", an odd precision "unknown".
func convertEvents(events []aiEvent, pool []types.Source) []types.HistoricalEvent {
	byURL := make(map[string]types.Source, len(pool))
	for _, src := range pool {
		byURL[reliability.NormalizeURL(src.URL)] = src
	}

	var out []types.HistoricalEvent
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" && strings.TrimSpace(ev.Description) == "" {
			continue
		}

		eventType := types.EventType(ev.Type)
		if !types.ValidEventTypes[eventType] {
			eventType = types.EventHistorical
		}
		precision := types.DatePrecision(ev.DatePrecision)
		if !types.ValidDatePrecisions[precision] {
			precision = types.PrecisionUnknown
		}

		var sources []types.Source
		seen := make(map[string]bool)
		for _, u := range ev.SourceURLs {
			key := reliability.NormalizeURL(u)
			src, ok := byURL[key]
			if !ok || seen[key] {
				continue
			}
			seen[key] = true
			sources = append(sources, src)
		}

		out = append(out, types.HistoricalEvent{
			ID:            uuid.NewString(),
			Date:          strings.TrimSpace(ev.Date),
			Title:         strings.TrimSpace(ev.Title),
			Description:   strings.TrimSpace(ev.Description),
			Type:          eventType,
			DatePrecision: precision,
			Sources:       sources,
		})
	}
	return out
}
