// Package pipeline coordinates the staged biographical research run:
// discovery, source collection, event generation, verification, enrichment,
// and optional metadata classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/biograph-engine/internal/discover"
	"github.com/pdiddy/biograph-engine/internal/enrich"
	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/internal/synthesize"
	"github.com/pdiddy/biograph-engine/internal/verify"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// Stage names one pipeline state. Transitions are strictly sequential with
// no backward moves.
type Stage string

const (
	StageDiscovery        Stage = "discovery"
	StageSourceCollection Stage = "source_collection"
	StageEventGeneration  Stage = "event_generation"
	StageVerification     Stage = "fact_verification"
	StageEnrichment       Stage = "enrichment"
	StageClassification   Stage = "classification"
	StageDone             Stage = "done"
)

// stageOrder fixes each stage's index for overall-progress arithmetic.
var stageOrder = []Stage{
	StageDiscovery,
	StageSourceCollection,
	StageEventGeneration,
	StageVerification,
	StageEnrichment,
	StageClassification,
}

// contextSourceLimit caps how many ranked sources feed the generation
// context document.
const contextSourceLimit = 10

// Progress is one progress report. The pipeline emits at least one per
// stage.
type Progress struct {
	Stage            Stage   `json:"stage"`
	StageProgress    float64 `json:"stage_progress"`
	Message          string  `json:"message"`
	SourcesCollected int     `json:"sources_collected"`
	EventsGenerated  int     `json:"events_generated"`
	EventsVerified   int     `json:"events_verified"`
}

// Overall folds the stage index and in-stage progress into a single [0,1]
// completion fraction.
func (p Progress) Overall() float64 {
	if p.Stage == StageDone {
		return 1.0
	}
	for i, s := range stageOrder {
		if s == p.Stage {
			return (float64(i) + p.StageProgress) / float64(len(stageOrder))
		}
	}
	return 0
}

// Classifier annotates a researched person with categorical metadata. The
// pipeline treats it as strictly optional: a nil classifier or a failing
// one changes nothing about the result.
type Classifier interface {
	Classify(ctx context.Context, person types.Person) (types.FilterMetadata, error)
}

// Pipeline wires the stage collaborators together for one research run per
// call.
type Pipeline struct {
	Discoverer  *discover.Orchestrator
	Synthesizer *synthesize.Synthesizer
	Verifier    *verify.Verifier
	Enricher    *enrich.Enricher
	Classifier  Classifier
	Config      types.ResearchConfig

	// Progress receives stage reports when non-nil. Sends never block: a
	// slow consumer drops reports rather than stalling the run.
	Progress chan<- Progress

	// Log receives human-readable stage output; defaults to io.Discard.
	Log io.Writer
}

// ResearchPerson runs the full pipeline for one name. It returns one of
// the abort errors (not-found, fictional, no-sources, generation-failed,
// cancelled) or a complete VerifiedPerson; no partial result accompanies
// an error.
func (p *Pipeline) ResearchPerson(ctx context.Context, name string) (*types.VerifiedPerson, error) {
	log := p.Log
	if log == nil {
		log = io.Discard
	}

	// Discovery.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	p.report(Progress{Stage: StageDiscovery, Message: fmt.Sprintf("discovering %q", name)})

	discovery, err := p.Discoverer.Discover(ctx, name, log)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	if discovery.Person.IsFictional {
		return nil, fmt.Errorf("%w: %s", ErrFictionalSubject, name)
	}
	if !discovery.Person.IsVerified {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	// Source collection.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	pool := discovery.Person.Sources
	p.report(Progress{
		Stage:            StageSourceCollection,
		Message:          fmt.Sprintf("collected %d sources", len(pool)),
		SourcesCollected: len(pool),
	})
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, name)
	}
	contextDoc := synthesize.BuildContextDocument(
		discovery.StructuredContext,
		reliability.TopN(pool, contextSourceLimit),
		contextSourceLimit,
	)

	// Event generation.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	p.report(Progress{Stage: StageEventGeneration, Message: "generating timeline", SourcesCollected: len(pool)})

	person, err := p.Synthesizer.Synthesize(ctx, name, contextDoc, pool)
	if err != nil {
		if errors.Is(err, synthesize.ErrFictionalRefusal) {
			return nil, fmt.Errorf("%w: %s", ErrFictionalSubject, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if person.Summary == "" {
		person.Summary = discovery.Person.Summary
	}

	// Verification.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	p.report(Progress{
		Stage:            StageVerification,
		Message:          fmt.Sprintf("verifying %d events", len(person.Events)),
		SourcesCollected: len(pool),
		EventsGenerated:  len(person.Events),
	})

	events, verifiedCount := p.Verifier.VerifyEvents(ctx, person.Name, person.Events, log)
	person.Events = events

	// Enrichment.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	p.report(Progress{
		Stage:            StageEnrichment,
		Message:          "enriching citations",
		SourcesCollected: len(pool),
		EventsGenerated:  len(person.Events),
		EventsVerified:   verifiedCount,
	})
	person.Events = p.Enricher.EnrichEvents(ctx, person.Name, person.Events, log)

	// Optional classification; failure is logged and ignored.
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	if p.Classifier != nil {
		p.report(Progress{
			Stage:            StageClassification,
			Message:          "classifying metadata",
			SourcesCollected: len(pool),
			EventsGenerated:  len(person.Events),
			EventsVerified:   verifiedCount,
		})
		if metadata, err := p.Classifier.Classify(ctx, person); err != nil {
			fmt.Fprintf(log, "classification skipped: %v\n", err)
		} else {
			person.FilterMetadata = metadata
		}
	}

	result := assemble(person, pool)
	p.report(Progress{
		Stage:            StageDone,
		StageProgress:    1,
		Message:          "research complete",
		SourcesCollected: len(result.AllSources),
		EventsGenerated:  len(person.Events),
		EventsVerified:   verifiedCount,
	})
	return result, nil
}

// assemble builds the final VerifiedPerson: the person, the deduplicated
// union of the discovery pool and every event's citations, and run counts.
func assemble(person types.Person, pool []types.Source) *types.VerifiedPerson {
	all := make([]types.Source, 0, len(pool))
	all = append(all, pool...)
	eventsWithSources := 0
	for _, ev := range person.Events {
		if len(ev.Sources) > 0 {
			eventsWithSources++
		}
		all = append(all, ev.Sources...)
	}
	all = reliability.Deduplicate(all)

	authoritative := 0
	for _, src := range all {
		if reliability.IsAuthoritative(src.URL) {
			authoritative++
		}
	}

	return &types.VerifiedPerson{
		Person:     person,
		AllSources: all,
		ResearchSummary: types.ResearchSummary{
			TotalEvents:          len(person.Events),
			EventsWithSources:    eventsWithSources,
			TotalSources:         len(all),
			AuthoritativeSources: authoritative,
		},
	}
}

// report sends a progress event without ever blocking the run.
func (p *Pipeline) report(progress Progress) {
	if p.Progress == nil {
		return
	}
	select {
	case p.Progress <- progress:
	default:
	}
}

// checkCancelled observes cooperative cancellation at a stage boundary.
func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}
