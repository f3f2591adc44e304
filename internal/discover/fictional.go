// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"strings"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// strongFictionalCues are explicit statements that the subject is a
// fictional character.
var strongFictionalCues = []string{
	"is a fictional character",
	"fictional character",
	"is a character in",
	"played by",
	"portrayed by",
	"voiced by",
}

// moderateFictionalCues are genre nouns that suggest fiction but also
// appear in articles about real people (actors, authors).
var moderateFictionalCues = []string{
	"comic book character",
	"video game character",
	"superhero",
	"protagonist",
	"antagonist",
	"character from",
	"in the series",
	"anime",
}

// realPersonCues are biographical vocabulary counter-signals.
var realPersonCues = []string{
	"was born",
	"born on",
	"born in",
	"died on",
	"died in",
	"biography",
	"early life",
	"career",
	"real life",
	"real person",
	"historian",
	"obituary",
}

// IsFictional classifies a result set as describing a fictional character.
//
// Per-result, a hit counts once per cue tier it contains. The branch order
// and thresholds are deliberate and must not be reordered: the rule is
// biased toward false negatives, because misclassifying a real person as
// fictional is the worse error.
func IsFictional(hits []types.SearchHit) bool {
	var strong, moderate, anyFictional, counter int
	for _, h := range hits {
		text := strings.ToLower(h.Title + " " + h.Content)
		hasStrong := containsAny(text, strongFictionalCues)
		hasModerate := containsAny(text, moderateFictionalCues)
		if hasStrong {
			strong++
		}
		if hasModerate {
			moderate++
		}
		if hasStrong || hasModerate {
			anyFictional++
		}
		if containsAny(text, realPersonCues) {
			counter++
		}
	}

	if counter > strong+moderate {
		return false
	}
	if strong >= 2 && counter <= 1 {
		return true
	}
	if strong >= 1 && counter == 0 {
		return true
	}
	if len(hits) > 0 &&
		float64(anyFictional)/float64(len(hits)) > 0.6 &&
		moderate >= 3 && counter <= 1 {
		return true
	}
	return false
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
