package reliability

import (
	"strings"
	"testing"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// --- Classify ---

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want types.SourceType
	}{
		{"registry exact", "https://www.britannica.com/biography/Albert-Einstein", types.SourceEncyclopedia},
		{"registry news", "https://bbc.co.uk/news/history", types.SourceNews},
		{"edu suffix", "https://history.princeton.edu/people", types.SourceAcademic},
		{"gov suffix", "https://airandspace.si.gov/exhibit", types.SourceOfficial},
		{"wikipedia subdomain", "https://de.wikipedia.org/wiki/Marie_Curie", types.SourceEncyclopedia},
		{"unknown", "https://randomblog.example.net/post", types.SourceUnknown},
		{"empty", "", types.SourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// --- Score ---

func TestScoreRegistryBase(t *testing.T) {
	got := Score("https://www.britannica.com/biography/X", "")
	if got != 0.95 {
		t.Errorf("score = %f, want registry base 0.95", got)
	}
}

func TestScoreDefaultBase(t *testing.T) {
	got := Score("https://randomblog.example.net/post", "")
	if got != 0.4 {
		t.Errorf("score = %f, want default base 0.4", got)
	}
}

func TestScoreContentAdjustments(t *testing.T) {
	longBio := strings.Repeat("x", 501) + " born and died, a full biography"
	got := Score("https://randomblog.example.net/post", longBio)
	// 0.4 base + 0.02 length + 0.01 each for born, died, biography.
	want := 0.4 + 0.02 + 0.03
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %f, want %f", got, want)
	}
}

func TestScoreUncertaintyPenalty(t *testing.T) {
	plain := Score("https://randomblog.example.net/post", "born in 1879")
	hedged := Score("https://randomblog.example.net/post", "allegedly born in 1879, disputed")
	if hedged >= plain {
		t.Errorf("hedged score %f should be below plain score %f", hedged, plain)
	}
}

// TestScoreBounds exercises inputs engineered to push past both limits.
func TestScoreBounds(t *testing.T) {
	inputs := []struct {
		url     string
		content string
	}{
		{"https://www.britannica.com/x", strings.Repeat("born died biography career education married childhood graduated awarded legacy ", 3) + strings.Repeat("x", 600)},
		{"https://randomblog.example.net/x", strings.Repeat("allegedly reportedly rumored disputed unverified apocryphal ", 10)},
		{"", ""},
	}
	for _, in := range inputs {
		got := Score(in.url, in.content)
		if got < 0.0 || got > 1.0 {
			t.Errorf("Score(%q, ...) = %f, out of [0,1]", in.url, got)
		}
	}
}

func TestScoreKeywordCountedOncePerKeyword(t *testing.T) {
	single := Score("https://randomblog.example.net/x", "born")
	repeated := Score("https://randomblog.example.net/x", "born born born")
	if single != repeated {
		t.Errorf("repeated keyword changed score: %f vs %f", single, repeated)
	}
}

// --- IsAuthoritative ---

func TestIsAuthoritative(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"registry domain", "https://www.nobelprize.org/prizes/physics/1921", true},
		{"edu suffix", "https://libraries.mit.edu/archives", true},
		{"deny list", "https://twitter.com/someone/status/1", false},
		{"deny list subdomain", "https://mobile.twitter.com/someone", false},
		{"unknown domain", "https://randomblog.example.net/post", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthoritative(tt.url); got != tt.want {
				t.Errorf("IsAuthoritative(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// --- Deduplicate ---

func srcs(urls ...string) []types.Source {
	out := make([]types.Source, len(urls))
	for i, u := range urls {
		out[i] = types.Source{ID: u, URL: u}
	}
	return out
}

func TestDeduplicateNormalizedKey(t *testing.T) {
	in := srcs(
		"https://www.britannica.com/biography/X/",
		"http://britannica.com/biography/X?utm=feed",
		"https://britannica.com/biography/Y",
	)
	out := Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	// First-seen order preserved.
	if out[0].ID != in[0].ID || out[1].ID != in[2].ID {
		t.Errorf("order not preserved: %v", []string{out[0].ID, out[1].ID})
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := srcs("https://a.com/1", "http://a.com/1/", "https://b.com/2")
	once := Deduplicate(in)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].URL != twice[i].URL {
			t.Errorf("element %d changed: %q vs %q", i, once[i].URL, twice[i].URL)
		}
	}
}

// --- TopN ---

func TestTopNStableOnTies(t *testing.T) {
	in := []types.Source{
		{ID: "a", ReliabilityScore: 0.5},
		{ID: "b", ReliabilityScore: 0.9},
		{ID: "c", ReliabilityScore: 0.5},
		{ID: "d", ReliabilityScore: 0.7},
	}
	out := TopN(in, 3)
	want := []string{"b", "d", "a"}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d] = %q, want %q", i, out[i].ID, id)
		}
	}
	// Input untouched.
	if in[0].ID != "a" {
		t.Errorf("TopN mutated its input")
	}
}

func TestTopNShortInput(t *testing.T) {
	in := []types.Source{{ID: "a", ReliabilityScore: 0.5}}
	out := TopN(in, 10)
	if len(out) != 1 {
		t.Errorf("len = %d, want 1", len(out))
	}
}

// --- NormalizeURL ---

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Example.com/Path/", "example.com/path"},
		{"http://example.com/path?q=1&r=2", "example.com/path"},
		{"example.com/path", "example.com/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
