// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// fictionalRefusalToken is the exact refusal signal the model is instructed
// to emit instead of a timeline when the subject is fictional.
const fictionalRefusalToken = "FICTIONAL_SUBJECT"

// timelineSystemPrompt constrains the event-generation call: JSON only,
// citations only from the provided source list, and the refusal token for
// fictional subjects.
const timelineSystemPrompt = `You are a biographical research system. You produce structured timelines of documented life events for real historical and contemporary figures.

Rules:
- If the subject is a fictional character, respond with exactly ` + fictionalRefusalToken + ` and nothing else.
- Otherwise respond with a single JSON object and no text outside it.
- Cite sources only by URLs that appear in the provided source list. Never invent a URL.
- Prefer documented facts over speculation; omit events you cannot place in time.`

// timelinePromptTmpl is the user prompt for the event-generation call.
var timelinePromptTmpl = template.Must(template.New("timeline").Parse(`Research the life of {{.Name}} and produce a chronological timeline of 15 to 30 major life events, prioritizing milestones: birth, education, career turns, major achievements, significant personal events, death.

Respond with a JSON object of this shape:
{"name": "...", "summary": "one-paragraph biography", "birth_date": "...", "death_date": "...", "events": [{"title": "short label", "description": "1-3 sentences", "date": "human-readable date", "type": "birth|childhood|education|career|personal|achievement|death|historical", "date_precision": "exact|month_year|year_only|approximate|decade|unknown", "source_urls": ["..."]}]}

Every event's source_urls entries must come from the source list below. Events are ordered chronologically.

{{.ContextDocument}}
`))

// descriptionPromptTmpl asks for one-sentence disambiguation descriptions
// for a batch of candidate names.
var descriptionPromptTmpl = template.Must(template.New("descriptions").Parse(`For each person named below, write one short sentence identifying who they are (era, field, best-known contribution). Respond with a single JSON object mapping each name exactly as given to its sentence, and no text outside the JSON.

Names:
{{- range .Names}}
- {{.}}
{{- end}}
`))

// renderTimelinePrompt executes the event-generation template.
func renderTimelinePrompt(name, contextDocument string) (string, error) {
	var buf bytes.Buffer
	err := timelinePromptTmpl.Execute(&buf, struct {
		Name            string
		ContextDocument string
	}{Name: name, ContextDocument: contextDocument})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildContextDocument assembles the evidence document the generation call
// reads: the structured-facts blocks, the top-N ranked sources the model
// may cite, and their raw content snippets.
func BuildContextDocument(structuredContext string, sources []types.Source, topN int) string {
	var b strings.Builder

	if structuredContext != "" {
		b.WriteString(structuredContext)
		b.WriteString("\n\n")
	}

	top := sources
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}

	b.WriteString("Available authoritative sources:\n")
	for _, src := range top {
		fmt.Fprintf(&b, "- %s (%s) %s\n", src.Title, src.Type, src.URL)
	}

	var withContent []types.Source
	for _, src := range top {
		if strings.TrimSpace(src.ContentSnippet) != "" {
			withContent = append(withContent, src)
		}
	}
	if len(withContent) > 0 {
		b.WriteString("\nSource content:\n")
		for _, src := range withContent {
			fmt.Fprintf(&b, "[%s]\n%s\n\n", src.URL, strings.TrimSpace(src.ContentSnippet))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
