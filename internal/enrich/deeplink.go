// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// quoteMaxLen bounds the display quote taken from a content snippet.
const quoteMaxLen = 200

// textFragmentMaxLen bounds the quote prefix embedded in a text-fragment
// locator; browsers match short fragments more reliably.
const textFragmentMaxLen = 60

// SelectQuote picks the best citation quote: an explicit relevant-quote
// field wins, else the content snippet truncated at a clean word boundary.
func SelectQuote(src types.Source) string {
	if q := strings.TrimSpace(src.RelevantQuote); q != "" {
		return q
	}
	return truncateClean(strings.TrimSpace(src.ContentSnippet), quoteMaxLen)
}

// ResolveDeepLink resolves the most specific link available for a citation.
// Priority: an absolute-URL hint, a bare-fragment hint, an anchor slug for
// encyclopedia sources, generic relative resolution against the source URL,
// a text-fragment locator built from the quote, and finally the source URL
// itself.
func ResolveDeepLink(src types.Source, hint, quote string) string {
	hint = strings.TrimSpace(hint)

	if isAbsoluteURL(hint) {
		return hint
	}
	if strings.HasPrefix(hint, "#") {
		return src.URL + hint
	}
	if hint != "" && src.Type == types.SourceEncyclopedia {
		return src.URL + "#" + anchorSlug(hint)
	}
	if hint != "" {
		if resolved := resolveRelative(src.URL, hint); resolved != "" {
			return resolved
		}
	}
	if quote != "" {
		return src.URL + "#:~:text=" + url.QueryEscape(truncateClean(quote, textFragmentMaxLen))
	}
	return src.URL
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// anchorSlug converts free text to an encyclopedia-style section anchor
// ("Early life" becomes "Early_life").
func anchorSlug(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	return strings.Join(fields, "_")
}

func resolveRelative(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

// truncateClean cuts text to at most max characters, backing up to the last
// word boundary so no word is split.
func truncateClean(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}
