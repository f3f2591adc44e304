package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// wikidataHandler serves canned wbsearchentities/wbgetentities responses.
func wikidataHandler(t *testing.T, labelCalls *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "wbsearchentities":
			fmt.Fprint(w, `{"search":[
				{"id":"Q937","label":"Albert Einstein","description":"theoretical physicist"},
				{"id":"Q12345","label":"Einstein (crater)","description":"lunar crater"}]}`)
		case "wbgetentities":
			ids := q.Get("ids")
			if q.Get("props") == "labels" {
				if labelCalls != nil {
					*labelCalls = append(*labelCalls, ids)
				}
				fmt.Fprint(w, `{"entities":{
					"Q3012":{"labels":{"en":{"value":"Ulm"}}},
					"Q1345":{"labels":{"en":{"value":"Princeton"}}},
					"Q169470":{"labels":{"en":{"value":"theoretical physicist"}}}}}`)
				return
			}
			if ids != "Q937" {
				t.Errorf("unexpected entity fetch for %q", ids)
			}
			fmt.Fprint(w, `{"entities":{"Q937":{
				"labels":{"en":{"value":"Albert Einstein"}},
				"descriptions":{"en":{"value":"German-born theoretical physicist"}},
				"claims":{
					"P31":[{"mainsnak":{"datavalue":{"type":"wikibase-entityid","value":{"id":"Q5"}}}}],
					"P569":[{"mainsnak":{"datavalue":{"type":"time","value":{"time":"+1879-03-14T00:00:00Z","precision":11}}}}],
					"P570":[{"mainsnak":{"datavalue":{"type":"time","value":{"time":"+1955-04-18T00:00:00Z","precision":11}}}}],
					"P19":[{"mainsnak":{"datavalue":{"type":"wikibase-entityid","value":{"id":"Q3012"}}}}],
					"P20":[{"mainsnak":{"datavalue":{"type":"wikibase-entityid","value":{"id":"Q1345"}}}}],
					"P106":[{"mainsnak":{"datavalue":{"type":"wikibase-entityid","value":{"id":"Q169470"}}}}]
				}}}}`)
		default:
			t.Errorf("unexpected action %q", q.Get("action"))
		}
	}
}

func TestWikidataDiscover(t *testing.T) {
	ts := httptest.NewServer(wikidataHandler(t, nil))
	defer ts.Close()

	old := wikidataAPIBase
	wikidataAPIBase = ts.URL
	defer func() { wikidataAPIBase = old }()

	c := &WikidataClient{Client: ts.Client()}
	result, err := c.Discover(context.Background(), "Albert Einstein")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if result.IsEmpty {
		t.Fatal("result should not be empty")
	}
	facts := result.Wikidata
	if facts == nil {
		t.Fatal("missing structured facts")
	}
	if facts.EntityID != "Q937" {
		t.Errorf("entity = %q, want Q937", facts.EntityID)
	}
	if facts.BirthDate != "March 14, 1879" {
		t.Errorf("birth date = %q", facts.BirthDate)
	}
	if facts.BirthPlace != "Q3012" {
		t.Errorf("birth place should be the raw id pending resolution, got %q", facts.BirthPlace)
	}
	want := []string{"Q1345", "Q169470", "Q3012"}
	got := result.PendingLabels
	if len(got) != len(want) {
		t.Fatalf("pending labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pending[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if len(result.Sources) != 1 || !strings.Contains(result.Sources[0].URL, "Q937") {
		t.Errorf("expected one entity-page source, got %+v", result.Sources)
	}
}

func TestWikidataDiscoverNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"search":[]}`)
	}))
	defer ts.Close()

	old := wikidataAPIBase
	wikidataAPIBase = ts.URL
	defer func() { wikidataAPIBase = old }()

	c := &WikidataClient{Client: ts.Client()}
	result, err := c.Discover(context.Background(), "Xyzzyxblorp Nonexistentperson")
	if err != nil {
		t.Fatalf("not-found must be an empty result, not an error: %v", err)
	}
	if !result.IsEmpty {
		t.Error("want empty result")
	}
}

func TestWikidataDiscoverRejectsNonHuman(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "wbsearchentities":
			fmt.Fprint(w, `{"search":[{"id":"Q111","label":"Everest","description":"mountain"}]}`)
		case "wbgetentities":
			fmt.Fprint(w, `{"entities":{"Q111":{
				"labels":{"en":{"value":"Everest"}},
				"claims":{"P31":[{"mainsnak":{"datavalue":{"type":"wikibase-entityid","value":{"id":"Q8502"}}}}]}}}}`)
		}
	}))
	defer ts.Close()

	old := wikidataAPIBase
	wikidataAPIBase = ts.URL
	defer func() { wikidataAPIBase = old }()

	c := &WikidataClient{Client: ts.Client()}
	result, err := c.Discover(context.Background(), "Everest")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !result.IsEmpty {
		t.Error("non-human entity must yield an empty result")
	}
}

func TestWikidataResolveLabelsBatches(t *testing.T) {
	var labelCalls []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		labelCalls = append(labelCalls, r.URL.Query().Get("ids"))
		resp := wdEntitiesResponse{Entities: map[string]wdEntity{}}
		for _, id := range strings.Split(r.URL.Query().Get("ids"), "|") {
			resp.Entities[id] = wdEntity{Labels: map[string]wdLabel{"en": {Value: "label-" + id}}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	old := wikidataAPIBase
	wikidataAPIBase = ts.URL
	defer func() { wikidataAPIBase = old }()

	ids := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("Q%d", i+1))
	}

	c := &WikidataClient{Client: ts.Client()}
	labels, err := c.ResolveLabels(context.Background(), ids)
	if err != nil {
		t.Fatalf("ResolveLabels: %v", err)
	}
	if len(labels) != 60 {
		t.Errorf("labels = %d, want 60", len(labels))
	}
	if len(labelCalls) != 2 {
		t.Fatalf("calls = %d, want 2 batches", len(labelCalls))
	}
	if n := len(strings.Split(labelCalls[0], "|")); n != 50 {
		t.Errorf("first batch size = %d, want 50", n)
	}
	if n := len(strings.Split(labelCalls[1], "|")); n != 10 {
		t.Errorf("second batch size = %d, want 10", n)
	}
}

func TestBestEntityMatch(t *testing.T) {
	candidates := []wdSearchHit{
		{ID: "Q1", Label: "Marie Curie-Sklodowska"},
		{ID: "Q2", Label: "Marie Curie"},
		{ID: "Q3", Label: "Curie Institute"},
	}
	tests := []struct {
		name string
		want string
	}{
		// Exact match wins, case-insensitively; then last-name fallback.
		{"Marie Curie", "Q2"},
		{"marie curie", "Q2"},
		{"Pierre Curie", "Q1"},
		{"Nonexistent Name", ""},
	}
	for _, tt := range tests {
		if got := bestEntityMatch(tt.name, candidates); got != tt.want {
			t.Errorf("bestEntityMatch(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatWikidataTime(t *testing.T) {
	tests := []struct {
		raw       string
		precision int
		want      string
	}{
		{"+1879-03-14T00:00:00Z", 11, "March 14, 1879"},
		{"+1879-03-01T00:00:00Z", 10, "March 1879"},
		{"+1879-01-01T00:00:00Z", 9, "1879"},
		{"+1815-00-00T00:00:00Z", 9, "1815"}, // malformed month, year salvage
	}
	for _, tt := range tests {
		if got := formatWikidataTime(tt.raw, tt.precision); got != tt.want {
			t.Errorf("formatWikidataTime(%q, %d) = %q, want %q", tt.raw, tt.precision, got, tt.want)
		}
	}
}
