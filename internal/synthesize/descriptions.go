// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"bytes"
	"context"
	"encoding/json"
)

const (
	descriptionMaxTokens   = 1024
	descriptionTemperature = 0.2
)

// DescribeCandidates asks the model for one-sentence disambiguation
// descriptions, one batch call for all names. It is strictly best-effort:
// any failure, including unparseable output, yields an empty map.
func DescribeCandidates(ctx context.Context, backend Backend, names []string) map[string]string {
	descriptions := make(map[string]string)
	if len(names) == 0 {
		return descriptions
	}

	var buf bytes.Buffer
	if err := descriptionPromptTmpl.Execute(&buf, struct{ Names []string }{Names: names}); err != nil {
		return descriptions
	}

	raw, err := backend.Generate(ctx, "You identify people concisely and factually.", buf.String(), descriptionMaxTokens, descriptionTemperature)
	if err != nil {
		return descriptions
	}

	text := RepairTruncatedJSON(SliceToBraces(StripCodeFences(raw)))

	var parsed map[string]string
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return descriptions
	}
	for _, name := range names {
		if desc, ok := parsed[name]; ok && desc != "" {
			descriptions[name] = desc
		}
	}
	return descriptions
}
