// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import "strings"

// StripCodeFences removes a surrounding Markdown code fence, with or
// without a language tag, leaving other text untouched.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]\"") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// SliceToBraces cuts the text down to the span between the first opening
// brace and the last closing brace, when the text does not already start
// with one. Responses sometimes lead with prose before the JSON document.
func SliceToBraces(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return trimmed
	}
	end := strings.LastIndexByte(trimmed, '}')
	if end > start {
		return trimmed[start : end+1]
	}
	return trimmed[start:]
}

// RepairTruncatedJSON closes structures left open by a token-limit cutoff.
// It scans character by character tracking quoted-string and escape state,
// keeps a stack of unmatched open braces and brackets, then closes any open
// string and unwinds the stack in reverse nesting order (so open arrays
// close before the objects containing them). Already-balanced input is
// returned unchanged, which makes the repair idempotent.
func RepairTruncatedJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}

	repaired := s
	if inString {
		repaired += `"`
	}
	// A cutoff right after an element leaves a dangling comma that would
	// make the closed structure invalid.
	if t := strings.TrimRight(repaired, " \t\r\n"); strings.HasSuffix(t, ",") {
		repaired = strings.TrimSuffix(t, ",")
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}
	return repaired
}
