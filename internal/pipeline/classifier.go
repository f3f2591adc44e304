// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/biograph-engine/internal/synthesize"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

const (
	classifierMaxTokens   = 256
	classifierTemperature = 0.1
)

// classifierPromptTmpl asks for the four categorical tags as bare JSON.
var classifierPromptTmpl = template.Must(template.New("classify").Parse(`Classify the person below into four categorical tags. Respond with a single JSON object {"era": "...", "domain": "...", "region": "...", "impact": "..."} and no other text.

- era: a broad period label such as "ancient", "19th-century", "modern"
- domain: the primary field such as "science", "politics", "arts", "sports"
- region: the primary geographic association such as "europe", "north-america"
- impact: "global", "national", or "local"

Name: {{.Name}}
Summary: {{.Summary}}
{{- if .BirthDate}}
Born: {{.BirthDate}}{{end}}
{{- if .DeathDate}}
Died: {{.DeathDate}}{{end}}
`))

// LLMClassifier derives filter metadata from the researched person via one
// lightweight model call.
type LLMClassifier struct {
	Backend synthesize.Backend
}

// Classify returns the categorical tags, or an error the pipeline ignores.
func (c *LLMClassifier) Classify(ctx context.Context, person types.Person) (types.FilterMetadata, error) {
	var buf bytes.Buffer
	if err := classifierPromptTmpl.Execute(&buf, person); err != nil {
		return types.FilterMetadata{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := c.Backend.Generate(ctx, "You classify historical figures into fixed categories.", buf.String(), classifierMaxTokens, classifierTemperature)
	if err != nil {
		return types.FilterMetadata{}, fmt.Errorf("classification call: %w", err)
	}

	text := synthesize.RepairTruncatedJSON(synthesize.SliceToBraces(synthesize.StripCodeFences(raw)))

	var metadata types.FilterMetadata
	if err := json.Unmarshal([]byte(text), &metadata); err != nil {
		return types.FilterMetadata{}, fmt.Errorf("parsing classification: %w", err)
	}
	if metadata.IsEmpty() {
		return types.FilterMetadata{}, fmt.Errorf("classification produced no tags")
	}
	return metadata, nil
}
