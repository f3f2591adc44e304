// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// decadePattern matches a decade-form date token such as "1870s".
var decadePattern = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})s\b`)

// dayPattern matches a standalone one-or-two-digit day number, optionally
// with an ordinal suffix. Four-digit years never match.
var dayPattern = regexp.MustCompile(`\b([0-9]{1,2})(st|nd|rd|th)?\b`)

// approximateMarkers signal an uncertain date. A leading "c." is handled
// separately so month abbreviations like "dec." do not trip it.
var approximateMarkers = []string{"circa", "~", "around", "approximately", "about"}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// InferDatePrecision reads the precision off the lexical shape of a
// free-form date string: decade form first, then approximation markers,
// then which of day/month/year tokens are present.
func InferDatePrecision(date string) types.DatePrecision {
	t := strings.ToLower(strings.TrimSpace(date))
	if t == "" {
		return types.PrecisionUnknown
	}
	if decadePattern.MatchString(t) {
		return types.PrecisionDecade
	}
	if strings.HasPrefix(t, "c.") || strings.Contains(t, " c.") {
		return types.PrecisionApproximate
	}
	for _, marker := range approximateMarkers {
		if strings.Contains(t, marker) {
			return types.PrecisionApproximate
		}
	}
	if types.YearOf(t) == 0 {
		return types.PrecisionUnknown
	}
	hasMonth := false
	for _, m := range monthNames {
		if strings.Contains(t, m) {
			hasMonth = true
			break
		}
	}
	if hasMonth && dayPattern.MatchString(t) {
		return types.PrecisionExact
	}
	if hasMonth {
		return types.PrecisionMonthYear
	}
	return types.PrecisionYearOnly
}
