// Package dateextract scans free text for an embedded date-time and resolves
// it to a local-wall-clock instant. It exists because the remote model often
// loses a precise timestamp buried in noisy OCR text (status bars, app chrome)
// or defaults to "now"; a deterministic local scan recovers the real time when
// it is explicitly present, and callers trust it over the model's date.
package dateextract

import (
	"regexp"
	"strconv"
	"time"
)

// Matches e.g. "2026-02-11 20:34:31", "2026/2/11 20:34", "2026.02.11T08:05"
// and the localized form "2026年2月11日 20:34". Seconds are optional.
var pattern = regexp.MustCompile(
	`(\d{4})[-/.年](\d{1,2})[-/.月](\d{1,2})日?[\sT]+(\d{1,2}):(\d{2})(?::(\d{2}))?`)

// Extract returns the first date-time embedded in text, interpreted as local
// wall-clock time. The second return value is false when no well-formed
// date-time is present; that is an absence of evidence, not an error.
func Extract(text string) (time.Time, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	year := atoi(m[1])
	month := atoi(m[2])
	day := atoi(m[3])
	hour := atoi(m[4])
	minute := atoi(m[5])
	second := 0
	if m[6] != "" {
		second = atoi(m[6])
	}

	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)

	// time.Date normalizes out-of-range components (month 13 rolls into the
	// next year); a round-trip mismatch means the matched text was not a real
	// calendar date.
	if ts.Year() != year || int(ts.Month()) != month || ts.Day() != day {
		return time.Time{}, false
	}

	return ts, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
