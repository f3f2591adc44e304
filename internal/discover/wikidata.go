// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/biograph-engine/internal/httputil"
	"github.com/pdiddy/biograph-engine/internal/reliability"
	"github.com/pdiddy/biograph-engine/pkg/types"
)

// wikidataAPIBase is the Wikidata Action API endpoint. Declared as a var
// so tests can substitute an httptest server.
var wikidataAPIBase = "https://www.wikidata.org/w/api.php"

// labelBatchSize bounds one wbgetentities label-resolution call. The API
// rejects requests for more than 50 ids.
const labelBatchSize = 50

// Properties read from entity claims.
const (
	propInstanceOf  = "P31"
	propBirthDate   = "P569"
	propDeathDate   = "P570"
	propBirthPlace  = "P19"
	propDeathPlace  = "P20"
	propOccupation  = "P106"
	propCitizenship = "P27"
	propEducatedAt  = "P69"
	propAward       = "P166"
)

// humanEntityID is the Wikidata item for "human"; entities without it in
// their instance-of claims are rejected.
const humanEntityID = "Q5"

// WikidataFacts is the structured-fact bundle from Wikidata. Place and
// affiliation fields hold resolved labels, or raw Q-ids while label
// resolution is pending.
type WikidataFacts struct {
	EntityID      string   `json:"entity_id" yaml:"entity_id"`
	Label         string   `json:"label" yaml:"label"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	BirthDate     string   `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate     string   `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	BirthPlace    string   `json:"birth_place,omitempty" yaml:"birth_place,omitempty"`
	DeathPlace    string   `json:"death_place,omitempty" yaml:"death_place,omitempty"`
	Occupations   []string `json:"occupations,omitempty" yaml:"occupations,omitempty"`
	Nationalities []string `json:"nationalities,omitempty" yaml:"nationalities,omitempty"`
	EducatedAt    []string `json:"educated_at,omitempty" yaml:"educated_at,omitempty"`
	Awards        []string `json:"awards,omitempty" yaml:"awards,omitempty"`
}

// IsEmpty reports whether no informative field is populated.
func (f *WikidataFacts) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Description == "" && f.BirthDate == "" && f.DeathDate == "" &&
		f.BirthPlace == "" && f.DeathPlace == "" &&
		len(f.Occupations) == 0 && len(f.Nationalities) == 0 &&
		len(f.EducatedAt) == 0 && len(f.Awards) == 0
}

// PendingIDs returns the distinct raw Q-ids still awaiting label
// resolution, in deterministic order.
func (f *WikidataFacts) PendingIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(v string) {
		if isEntityID(v) && !seen[v] {
			seen[v] = true
			ids = append(ids, v)
		}
	}
	collect(f.BirthPlace)
	collect(f.DeathPlace)
	for _, v := range f.Occupations {
		collect(v)
	}
	for _, v := range f.Nationalities {
		collect(v)
	}
	for _, v := range f.EducatedAt {
		collect(v)
	}
	for _, v := range f.Awards {
		collect(v)
	}
	sort.Strings(ids)
	return ids
}

// ApplyLabels replaces raw Q-ids with resolved labels. Ids missing from
// the map are left as-is (the fallback when resolution partially fails).
func (f *WikidataFacts) ApplyLabels(labels map[string]string) {
	resolve := func(v string) string {
		if label, ok := labels[v]; ok && label != "" {
			return label
		}
		return v
	}
	f.BirthPlace = resolve(f.BirthPlace)
	f.DeathPlace = resolve(f.DeathPlace)
	for i, v := range f.Occupations {
		f.Occupations[i] = resolve(v)
	}
	for i, v := range f.Nationalities {
		f.Nationalities[i] = resolve(v)
	}
	for i, v := range f.EducatedAt {
		f.EducatedAt[i] = resolve(v)
	}
	for i, v := range f.Awards {
		f.Awards[i] = resolve(v)
	}
}

// ContextBlock renders the facts as a deterministic human-readable block
// for the language model. Empty fields are omitted.
func (f *WikidataFacts) ContextBlock() string {
	if f.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Structured facts (Wikidata):\n")
	writeLine := func(field, value string) {
		if value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", field, value)
		}
	}
	writeLine("Name", f.Label)
	writeLine("Description", f.Description)
	born := f.BirthDate
	if f.BirthPlace != "" {
		born = strings.TrimSpace(born + " in " + f.BirthPlace)
	}
	writeLine("Born", born)
	died := f.DeathDate
	if f.DeathPlace != "" {
		died = strings.TrimSpace(died + " in " + f.DeathPlace)
	}
	writeLine("Died", died)
	writeLine("Occupations", strings.Join(f.Occupations, ", "))
	writeLine("Nationalities", strings.Join(f.Nationalities, ", "))
	writeLine("Educated at", strings.Join(f.EducatedAt, ", "))
	writeLine("Awards", strings.Join(f.Awards, ", "))
	return strings.TrimRight(b.String(), "\n")
}

// WikidataClient queries the Wikidata Action API. It is a supplemental
// provider: the orchestrator converts its failures to an empty result.
type WikidataClient struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the provider identifier.
func (c *WikidataClient) Name() string { return "wikidata" }

// Discover resolves the name to a Wikidata item, rejects non-humans, and
// returns structured facts plus a citation source for the entity page.
// A name with no acceptable match yields EmptyResult(), not an error.
func (c *WikidataClient) Discover(ctx context.Context, name string) (ProviderResult, error) {
	candidates, err := c.searchEntities(ctx, name)
	if err != nil {
		return EmptyResult(), err
	}

	id := bestEntityMatch(name, candidates)
	if id == "" {
		return EmptyResult(), nil
	}

	entity, err := c.getEntity(ctx, id)
	if err != nil {
		return EmptyResult(), err
	}
	if !isHuman(entity.Claims) {
		return EmptyResult(), nil
	}

	facts := factsFromEntity(id, entity)
	if facts.IsEmpty() {
		return EmptyResult(), nil
	}

	entityURL := "https://www.wikidata.org/wiki/" + id
	src := types.Source{
		ID:               id,
		Title:            facts.Label,
		URL:              entityURL,
		Type:             types.SourceWikidata,
		Publisher:        "Wikidata",
		AccessDate:       time.Now().UTC(),
		ReliabilityScore: reliability.Score(entityURL, facts.Description),
		ContentSnippet:   facts.Description,
	}

	return ProviderResult{
		Sources:       []types.Source{src},
		Wikidata:      facts,
		PendingLabels: facts.PendingIDs(),
	}, nil
}

// ResolveLabels fetches English labels for the given Q-ids, batching at
// the API's 50-id limit. A partially failed batch drops only that batch's
// labels; the caller falls back to raw ids for anything unresolved.
func (c *WikidataClient) ResolveLabels(ctx context.Context, ids []string) (map[string]string, error) {
	labels := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += labelBatchSize {
		end := start + labelBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		params := url.Values{
			"action":    {"wbgetentities"},
			"ids":       {strings.Join(batch, "|")},
			"props":     {"labels"},
			"languages": {"en"},
			"format":    {"json"},
		}
		var er wdEntitiesResponse
		if err := c.get(ctx, params, &er); err != nil {
			return labels, fmt.Errorf("resolving labels: %w", err)
		}
		for id, entity := range er.Entities {
			if label, ok := entity.Labels["en"]; ok {
				labels[id] = label.Value
			}
		}
	}
	return labels, nil
}

func (c *WikidataClient) searchEntities(ctx context.Context, name string) ([]wdSearchHit, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {name},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {"10"},
		"format":   {"json"},
	}
	var sr wdSearchResponse
	if err := c.get(ctx, params, &sr); err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	return sr.Search, nil
}

func (c *WikidataClient) getEntity(ctx context.Context, id string) (*wdEntity, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {id},
		"props":     {"labels|descriptions|claims"},
		"languages": {"en"},
		"format":    {"json"},
	}
	var er wdEntitiesResponse
	if err := c.get(ctx, params, &er); err != nil {
		return nil, fmt.Errorf("fetching entity %s: %w", id, err)
	}
	entity, ok := er.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s missing from response", id)
	}
	return &entity, nil
}

func (c *WikidataClient) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikidataAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Wikidata API returned HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// bestEntityMatch picks a candidate id: exact label match first, then a
// label containing the full name, then a last-name-only fallback.
func bestEntityMatch(name string, candidates []wdSearchHit) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	for _, cand := range candidates {
		if strings.ToLower(cand.Label) == folded {
			return cand.ID
		}
	}
	for _, cand := range candidates {
		if strings.Contains(strings.ToLower(cand.Label), folded) {
			return cand.ID
		}
	}
	tokens := strings.Fields(folded)
	if len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		for _, cand := range candidates {
			if strings.Contains(strings.ToLower(cand.Label), last) {
				return cand.ID
			}
		}
	}
	return ""
}

// isHuman checks the instance-of claims for the "human" item.
func isHuman(claims map[string][]wdClaim) bool {
	for _, claim := range claims[propInstanceOf] {
		if id, ok := claim.entityValue(); ok && id == humanEntityID {
			return true
		}
	}
	return false
}

// factsFromEntity extracts the structured fact bundle from entity claims.
func factsFromEntity(id string, entity *wdEntity) *WikidataFacts {
	f := &WikidataFacts{EntityID: id}
	if label, ok := entity.Labels["en"]; ok {
		f.Label = label.Value
	}
	if desc, ok := entity.Descriptions["en"]; ok {
		f.Description = desc.Value
	}
	f.BirthDate = firstTimeValue(entity.Claims[propBirthDate])
	f.DeathDate = firstTimeValue(entity.Claims[propDeathDate])
	f.BirthPlace = firstEntityValue(entity.Claims[propBirthPlace])
	f.DeathPlace = firstEntityValue(entity.Claims[propDeathPlace])
	f.Occupations = entityValues(entity.Claims[propOccupation])
	f.Nationalities = entityValues(entity.Claims[propCitizenship])
	f.EducatedAt = entityValues(entity.Claims[propEducatedAt])
	f.Awards = entityValues(entity.Claims[propAward])
	return f
}

// isEntityID reports whether a value looks like a raw Wikidata item id.
func isEntityID(s string) bool {
	if len(s) < 2 || s[0] != 'Q' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Wikidata Action API JSON structures.

type wdSearchResponse struct {
	Search []wdSearchHit `json:"search"`
}

type wdSearchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type wdEntitiesResponse struct {
	Entities map[string]wdEntity `json:"entities"`
}

type wdEntity struct {
	Labels       map[string]wdLabel   `json:"labels"`
	Descriptions map[string]wdLabel   `json:"descriptions"`
	Claims       map[string][]wdClaim `json:"claims"`
}

type wdLabel struct {
	Value string `json:"value"`
}

type wdClaim struct {
	MainSnak wdSnak `json:"mainsnak"`
}

type wdSnak struct {
	DataValue wdDataValue `json:"datavalue"`
}

type wdDataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// entityValue extracts the item id from a wikibase-entityid claim.
func (c wdClaim) entityValue() (string, bool) {
	if c.MainSnak.DataValue.Type != "wikibase-entityid" {
		return "", false
	}
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(c.MainSnak.DataValue.Value, &v); err != nil || v.ID == "" {
		return "", false
	}
	return v.ID, true
}

// timeValue extracts and formats the date from a time claim.
func (c wdClaim) timeValue() (string, bool) {
	if c.MainSnak.DataValue.Type != "time" {
		return "", false
	}
	var v struct {
		Time      string `json:"time"`
		Precision int    `json:"precision"`
	}
	if err := json.Unmarshal(c.MainSnak.DataValue.Value, &v); err != nil || v.Time == "" {
		return "", false
	}
	return formatWikidataTime(v.Time, v.Precision), true
}

func firstTimeValue(claims []wdClaim) string {
	for _, c := range claims {
		if v, ok := c.timeValue(); ok {
			return v
		}
	}
	return ""
}

func firstEntityValue(claims []wdClaim) string {
	for _, c := range claims {
		if v, ok := c.entityValue(); ok {
			return v
		}
	}
	return ""
}

func entityValues(claims []wdClaim) []string {
	var out []string
	for _, c := range claims {
		if v, ok := c.entityValue(); ok {
			out = append(out, v)
		}
	}
	return out
}

// formatWikidataTime renders a Wikidata timestamp ("+1879-03-14T00:00:00Z")
// as human-readable text honoring the claim precision (11 = day,
// 10 = month, 9 and coarser = year).
func formatWikidataTime(raw string, precision int) string {
	s := strings.TrimPrefix(raw, "+")
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		// Keep the year if the full stamp is malformed (e.g. "-00-00" months).
		if len(s) >= 4 {
			return s[:4]
		}
		return raw
	}
	switch {
	case precision >= 11:
		return t.Format("January 2, 2006")
	case precision == 10:
		return t.Format("January 2006")
	default:
		return t.Format("2006")
	}
}
