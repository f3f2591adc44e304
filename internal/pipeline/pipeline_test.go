package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/biograph-engine/internal/discover"
	"github.com/pdiddy/biograph-engine/internal/enrich"
	"github.com/pdiddy/biograph-engine/internal/synthesize"
	"github.com/pdiddy/biograph-engine/internal/verify"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// stubSearcher serves the primary discovery, verification, and enrichment
// search calls alike.
type stubSearcher struct {
	hits  []types.SearchHit
	err   error
	calls int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ types.SearchDepth, _ int) ([]types.SearchHit, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

type stubBackend struct {
	response string
	calls    int
}

func (b *stubBackend) Generate(_ context.Context, _, _ string, _ int, _ float32) (string, error) {
	b.calls++
	return b.response, nil
}

type stubClassifier struct {
	metadata types.FilterMetadata
	err      error
}

func (c *stubClassifier) Classify(_ context.Context, _ types.Person) (types.FilterMetadata, error) {
	return c.metadata, c.err
}

func einsteinHits() []types.SearchHit {
	return []types.SearchHit{
		{
			Title:   "Albert Einstein - Encyclopedia",
			URL:     "https://en.wikipedia.org/wiki/Albert_Einstein",
			Content: "Albert Einstein was born on March 14, 1879. His career and biography span physics; he died in 1955.",
			Score:   0.9,
		},
		{
			Title:   "Albert Einstein | Biography",
			URL:     "https://www.britannica.com/biography/Albert-Einstein",
			Content: "Einstein, born 1879, was awarded the Nobel Prize in 1921. Biography of his education and career.",
			Score:   0.8,
		},
	}
}

const einsteinTimeline = `{
	"name": "Albert Einstein",
	"summary": "German-born theoretical physicist.",
	"birth_date": "March 14, 1879",
	"death_date": "April 18, 1955",
	"events": [
		{"title": "Born", "description": "Born in Ulm.", "date": "March 14, 1879",
		 "type": "birth", "date_precision": "exact",
		 "source_urls": ["https://en.wikipedia.org/wiki/Albert_Einstein"]},
		{"title": "Nobel Prize in Physics", "description": "Awarded the Nobel Prize.", "date": "1921",
		 "type": "achievement", "date_precision": "year_only",
		 "source_urls": ["https://www.britannica.com/biography/Albert-Einstein"]},
		{"title": "Emigrated to the United States", "description": "Left Germany permanently.", "date": "1933",
		 "type": "personal", "date_precision": "year_only", "source_urls": []}
	]
}`

func newTestPipeline(searcher *stubSearcher, backend synthesize.Backend) *Pipeline {
	cfg := types.BalancedResearch()
	return &Pipeline{
		Discoverer:  &discover.Orchestrator{Search: searcher, Config: types.DiscoveryConfig{MaxResults: 10}},
		Synthesizer: &synthesize.Synthesizer{Backend: backend},
		Verifier:    &verify.Verifier{Search: searcher, Config: cfg},
		Enricher:    &enrich.Enricher{Search: searcher, Config: cfg},
		Config:      cfg,
		Log:         &bytes.Buffer{},
	}
}

func TestResearchPersonNotFound(t *testing.T) {
	searcher := &stubSearcher{} // no hits at all
	backend := &stubBackend{response: einsteinTimeline}
	p := newTestPipeline(searcher, backend)

	_, err := p.ResearchPerson(context.Background(), "Xyzzyxblorp Nonexistentperson")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if backend.calls != 0 {
		t.Errorf("generation attempted after not-found (%d calls)", backend.calls)
	}
}

func TestResearchPersonFictional(t *testing.T) {
	searcher := &stubSearcher{hits: []types.SearchHit{
		{Title: "Sherlock Holmes is a fictional character", URL: "https://a.example.com", Content: "created by Conan Doyle"},
		{Title: "Sherlock Holmes is a fictional character in stories", URL: "https://b.example.com", Content: "the detective"},
		{Title: "Sherlock Holmes stories", URL: "https://c.example.com", Content: "the canon"},
	}}
	backend := &stubBackend{response: einsteinTimeline}
	p := newTestPipeline(searcher, backend)

	_, err := p.ResearchPerson(context.Background(), "Sherlock Holmes")
	if !errors.Is(err, ErrFictionalSubject) {
		t.Fatalf("err = %v, want ErrFictionalSubject", err)
	}
	if backend.calls != 0 {
		t.Errorf("generation attempted for fictional subject (%d calls)", backend.calls)
	}
}

func TestResearchPersonGenerationFailure(t *testing.T) {
	searcher := &stubSearcher{hits: einsteinHits()}
	backend := &stubBackend{response: "no structured output today"}
	p := newTestPipeline(searcher, backend)

	_, err := p.ResearchPerson(context.Background(), "Albert Einstein")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestResearchPersonGenerationRefusal(t *testing.T) {
	searcher := &stubSearcher{hits: einsteinHits()}
	backend := &stubBackend{response: "FICTIONAL_SUBJECT"}
	p := newTestPipeline(searcher, backend)

	_, err := p.ResearchPerson(context.Background(), "Albert Einstein")
	if !errors.Is(err, ErrFictionalSubject) {
		t.Fatalf("err = %v, want ErrFictionalSubject", err)
	}
}

func TestResearchPersonCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(&stubSearcher{hits: einsteinHits()}, &stubBackend{response: einsteinTimeline})
	_, err := p.ResearchPerson(ctx, "Albert Einstein")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestResearchPersonHappyPath(t *testing.T) {
	searcher := &stubSearcher{hits: einsteinHits()}
	backend := &stubBackend{response: einsteinTimeline}
	p := newTestPipeline(searcher, backend)

	result, err := p.ResearchPerson(context.Background(), "Albert Einstein")
	if err != nil {
		t.Fatalf("ResearchPerson: %v", err)
	}

	person := result.Person
	if person.Name != "Albert Einstein" || person.Summary == "" {
		t.Errorf("person = %+v", person)
	}
	if result.ResearchSummary.TotalEvents != len(person.Events) {
		t.Errorf("TotalEvents = %d, events = %d", result.ResearchSummary.TotalEvents, len(person.Events))
	}
	if result.ResearchSummary.EventsWithSources > result.ResearchSummary.TotalEvents {
		t.Errorf("summary inconsistent: %+v", result.ResearchSummary)
	}
	if result.ResearchSummary.TotalSources != len(result.AllSources) {
		t.Errorf("TotalSources = %d, pool = %d", result.ResearchSummary.TotalSources, len(result.AllSources))
	}

	// Every event citation must trace back to a URL the searcher actually
	// returned; nothing invented survives the pipeline.
	known := make(map[string]bool)
	for _, hit := range einsteinHits() {
		known[hit.URL] = true
	}
	for _, ev := range person.Events {
		for _, src := range ev.Sources {
			if !known[src.URL] {
				t.Errorf("event %q cites unknown URL %q", ev.Title, src.URL)
			}
		}
	}
}

func TestResearchPersonClassification(t *testing.T) {
	searcher := &stubSearcher{hits: einsteinHits()}
	p := newTestPipeline(searcher, &stubBackend{response: einsteinTimeline})

	// A failing classifier is ignored; the run still succeeds.
	p.Classifier = &stubClassifier{err: errors.New("model offline")}
	result, err := p.ResearchPerson(context.Background(), "Albert Einstein")
	if err != nil {
		t.Fatalf("ResearchPerson: %v", err)
	}
	if !result.Person.FilterMetadata.IsEmpty() {
		t.Errorf("metadata set despite classifier failure: %+v", result.Person.FilterMetadata)
	}

	// A working classifier annotates the person.
	p.Classifier = &stubClassifier{metadata: types.FilterMetadata{Era: "modern", Domain: "science", Region: "europe", Impact: "global"}}
	result, err = p.ResearchPerson(context.Background(), "Albert Einstein")
	if err != nil {
		t.Fatalf("ResearchPerson: %v", err)
	}
	if result.Person.FilterMetadata.Domain != "science" {
		t.Errorf("metadata = %+v", result.Person.FilterMetadata)
	}
}

func TestResearchPersonProgress(t *testing.T) {
	searcher := &stubSearcher{hits: einsteinHits()}
	progress := make(chan Progress, 32)
	p := newTestPipeline(searcher, &stubBackend{response: einsteinTimeline})
	p.Progress = progress

	if _, err := p.ResearchPerson(context.Background(), "Albert Einstein"); err != nil {
		t.Fatalf("ResearchPerson: %v", err)
	}
	close(progress)

	var reports []Progress
	for report := range progress {
		reports = append(reports, report)
	}
	if len(reports) < 5 {
		t.Fatalf("reports = %d, want at least one per stage", len(reports))
	}
	if reports[0].Stage != StageDiscovery {
		t.Errorf("first stage = %q", reports[0].Stage)
	}
	last := reports[len(reports)-1]
	if last.Stage != StageDone || last.Overall() != 1.0 {
		t.Errorf("last report = %+v", last)
	}
	prev := -1.0
	for _, report := range reports {
		if overall := report.Overall(); overall < prev {
			t.Errorf("overall progress went backwards: %v after %v", overall, prev)
		} else {
			prev = overall
		}
	}
	for _, report := range reports {
		if report.Stage == StageVerification && report.EventsGenerated != 3 {
			t.Errorf("verification report missing counts: %+v", report)
		}
	}
}

func TestProgressOverall(t *testing.T) {
	tests := []struct {
		progress Progress
		want     float64
	}{
		{Progress{Stage: StageDiscovery}, 0},
		{Progress{Stage: StageEventGeneration, StageProgress: 0.5}, 2.5 / 6},
		{Progress{Stage: StageEnrichment}, 4.0 / 6},
		{Progress{Stage: StageDone}, 1.0},
	}
	for _, tt := range tests {
		if got := tt.progress.Overall(); got != tt.want {
			t.Errorf("Overall(%q, %v) = %v, want %v", tt.progress.Stage, tt.progress.StageProgress, got, tt.want)
		}
	}
}

func TestClassifierParsesModelOutput(t *testing.T) {
	backend := &stubBackend{response: "```json\n{\"era\":\"modern\",\"domain\":\"science\",\"region\":\"europe\",\"impact\":\"global\"}\n```"}
	c := &LLMClassifier{Backend: backend}

	metadata, err := c.Classify(context.Background(), types.Person{Name: "Albert Einstein", Summary: "physicist"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if metadata.Era != "modern" || metadata.Impact != "global" {
		t.Errorf("metadata = %+v", metadata)
	}

	garbage := &stubBackend{response: "not json"}
	if _, err := (&LLMClassifier{Backend: garbage}).Classify(context.Background(), types.Person{Name: "X"}); err == nil {
		t.Fatal("expected an error for unparseable output")
	}
}
