package discover

import (
	"testing"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

func hit(title, content string) types.SearchHit {
	return types.SearchHit{Title: title, Content: content}
}

func TestIsFictionalStrongCues(t *testing.T) {
	hits := []types.SearchHit{
		hit("Clark Kent is a fictional character", "appearing in comics"),
		hit("Clark Kent", "the role has been played by several actors"),
		hit("Clark Kent merchandise", "buy posters"),
		hit("Kent family name", "origins of the surname"),
		hit("Superman lore", "alter ego of the hero"),
	}
	if !IsFictional(hits) {
		t.Error("two strong cues with no counter-cues should classify fictional")
	}
}

func TestIsFictionalSingleStrongNoCounter(t *testing.T) {
	hits := []types.SearchHit{
		hit("X is a fictional character", "from a long-running series"),
		hit("X fan page", "episode guide"),
	}
	if !IsFictional(hits) {
		t.Error("one strong cue with zero counter-cues should classify fictional")
	}
}

func TestIsFictionalCounterCuesWin(t *testing.T) {
	hits := []types.SearchHit{
		hit("Albert Einstein", "was born on March 14, 1879 in Ulm"),
		hit("Einstein biography", "early life and career of the physicist"),
		hit("Einstein in film", "the physicist has been played by many actors"),
	}
	if IsFictional(hits) {
		t.Error("counter-cues outnumbering fictional cues must classify real")
	}
}

func TestIsFictionalModerateMajority(t *testing.T) {
	hits := []types.SearchHit{
		hit("The superhero's debut", "comic book character since 1962"),
		hit("Top video game character rankings", "the character from the franchise"),
		hit("Anime adaptation", "protagonist of the series"),
		hit("Character merchandise", "superhero figures"),
	}
	if !IsFictional(hits) {
		t.Error(">60%% moderate cues with >=3 hits and no counter-cues should classify fictional")
	}
}

func TestIsFictionalEmptyResults(t *testing.T) {
	if IsFictional(nil) {
		t.Error("empty result set must not classify fictional")
	}
}

// Adding real-person counter-cue text to a set already classified real
// must never flip the classification to fictional.
func TestIsFictionalMonotoneUnderCounterCues(t *testing.T) {
	base := []types.SearchHit{
		hit("Jane Doe", "was born in 1920 and died in 1999"),
		hit("Jane Doe profile", "her career spanned decades"),
	}
	if IsFictional(base) {
		t.Fatal("base set should classify real")
	}
	extended := append(append([]types.SearchHit{}, base...),
		hit("Jane Doe obituary", "biography of her early life and career"),
		hit("Jane Doe papers", "born in a small town, the historian wrote"),
	)
	if IsFictional(extended) {
		t.Error("adding counter-cue text flipped a real classification to fictional")
	}
}
