// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reliability

import "github.com/pdiddy/biograph-engine/pkg/types"

// domainEntry pairs a source type with a base reliability score.
type domainEntry struct {
	Type  types.SourceType
	Score float64
}

// domainRegistry maps exact domains (without "www.") to their
// classification and base score. Read-only after initialization; safe for
// concurrent use without locking.
var domainRegistry = map[string]domainEntry{
	"en.wikipedia.org":    {types.SourceEncyclopedia, 0.90},
	"britannica.com":      {types.SourceEncyclopedia, 0.95},
	"plato.stanford.edu":  {types.SourceEncyclopedia, 0.95},
	"biography.com":       {types.SourceBiography, 0.80},
	"nobelprize.org":      {types.SourceOfficial, 0.95},
	"loc.gov":             {types.SourceArchive, 0.95},
	"archives.gov":        {types.SourceArchive, 0.95},
	"archive.org":         {types.SourceArchive, 0.85},
	"nytimes.com":         {types.SourceNews, 0.85},
	"bbc.com":             {types.SourceNews, 0.85},
	"bbc.co.uk":           {types.SourceNews, 0.85},
	"reuters.com":         {types.SourceNews, 0.85},
	"theguardian.com":     {types.SourceNews, 0.80},
	"washingtonpost.com":  {types.SourceNews, 0.80},
	"smithsonianmag.com":  {types.SourceNews, 0.80},
	"history.com":         {types.SourceBiography, 0.75},
	"jstor.org":           {types.SourceAcademic, 0.90},
	"nature.com":          {types.SourceAcademic, 0.90},
	"sciencedirect.com":   {types.SourceAcademic, 0.85},
	"scholar.google.com":  {types.SourceAcademic, 0.80},
	"wikidata.org":        {types.SourceWikidata, 0.85},
}

// suffixRules classifies domains by longest-matching suffix when no exact
// registry entry applies. Order matters: the first (longest) match wins.
var suffixRules = []struct {
	Suffix string
	Entry  domainEntry
}{
	{".wikipedia.org", domainEntry{types.SourceEncyclopedia, 0.90}},
	{".ac.uk", domainEntry{types.SourceAcademic, 0.85}},
	{".edu", domainEntry{types.SourceAcademic, 0.85}},
	{".gov", domainEntry{types.SourceOfficial, 0.90}},
	{".mil", domainEntry{types.SourceOfficial, 0.85}},
	{".museum", domainEntry{types.SourceArchive, 0.80}},
}

// denyList holds social and aggregator domains that are never considered
// authoritative, regardless of any other match.
var denyList = map[string]bool{
	"twitter.com":   true,
	"x.com":         true,
	"facebook.com":  true,
	"instagram.com": true,
	"tiktok.com":    true,
	"youtube.com":   true,
	"reddit.com":    true,
	"pinterest.com": true,
	"quora.com":     true,
	"medium.com":    true,
	"fandom.com":    true,
	"tumblr.com":    true,
}

// biographicalKeywords raise a source's score when present in its content.
var biographicalKeywords = []string{
	"born",
	"died",
	"biography",
	"career",
	"education",
	"married",
	"childhood",
	"graduated",
	"awarded",
	"legacy",
}

// uncertaintyKeywords lower a source's score when present in its content.
var uncertaintyKeywords = []string{
	"allegedly",
	"reportedly",
	"rumored",
	"disputed",
	"unverified",
	"apocryphal",
	"according to legend",
	"some claim",
}
