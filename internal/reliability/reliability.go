// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reliability scores, classifies, deduplicates, and ranks citation
// sources. All functions are pure and operate over the static registry in
// registry.go.
// See docs/ARCHITECTURE § Source Reliability.
package reliability

import (
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

const defaultBaseScore = 0.4

// Classify assigns a source type to a URL: exact-domain registry lookup
// first, then the longest-matching suffix rule, else unknown.
func Classify(rawURL string) types.SourceType {
	entry, ok := lookup(rawURL)
	if !ok {
		return types.SourceUnknown
	}
	return entry.Type
}

// Score computes a reliability score for a URL and its content snippet.
// The base comes from the registry or suffix rules (0.4 when neither
// matches), adjusted for content length and keyword signals, then clamped
// to [0,1].
func Score(rawURL, content string) float64 {
	score := defaultBaseScore
	if entry, ok := lookup(rawURL); ok {
		score = entry.Score
	}

	if len(content) > 500 {
		score += 0.02
	}

	lower := strings.ToLower(content)
	for _, kw := range biographicalKeywords {
		if strings.Contains(lower, kw) {
			score += 0.01
		}
	}
	for _, kw := range uncertaintyKeywords {
		if strings.Contains(lower, kw) {
			score -= 0.02
		}
	}

	return clamp(score)
}

// IsAuthoritative reports whether the URL's domain matches the allow
// registry or an authoritative suffix. The deny-list takes precedence over
// any other match.
func IsAuthoritative(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	if deniedHost(host) {
		return false
	}
	_, ok := lookup(rawURL)
	return ok
}

// Deduplicate removes sources whose normalized URLs collide, preserving
// first-seen order. Applying it twice yields the same list.
func Deduplicate(sources []types.Source) []types.Source {
	seen := make(map[string]bool, len(sources))
	deduped := make([]types.Source, 0, len(sources))
	for _, s := range sources {
		key := NormalizeURL(s.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, s)
	}
	return deduped
}

// TopN sorts sources by reliability score descending (ties keep input
// order) and returns the first n.
func TopN(sources []types.Source, n int) []types.Source {
	ranked := make([]types.Source, len(sources))
	copy(ranked, sources)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ReliabilityScore > ranked[j].ReliabilityScore
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// NormalizeURL lowercases a URL and strips the scheme, "www." prefix,
// trailing slash, and query string. Used as the dedup key.
func NormalizeURL(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	return s
}

// lookup resolves a URL against the exact registry, then the suffix rules.
func lookup(rawURL string) (domainEntry, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return domainEntry{}, false
	}
	if entry, ok := domainRegistry[host]; ok {
		return entry, true
	}
	for _, rule := range suffixRules {
		if strings.HasSuffix(host, rule.Suffix) {
			return rule.Entry, true
		}
	}
	return domainEntry{}, false
}

// hostOf extracts the bare hostname from a URL, stripping "www.".
// Scheme-less inputs like "britannica.com/biography" are tolerated.
func hostOf(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// deniedHost checks the host and its parent domains against the deny-list,
// so "mobile.twitter.com" is denied along with "twitter.com".
func deniedHost(host string) bool {
	for {
		if denyList[host] {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		rest := host[i+1:]
		if !strings.Contains(rest, ".") {
			return false
		}
		host = rest
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
