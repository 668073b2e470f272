package utils

import (
	"strings"
	"time"
)

// GetPeriodRange returns the current reporting window ending at `asOf` and the
// immediately preceding window of equal length. The previous window ends where
// the current one starts, so the two order sets are disjoint.
func GetPeriodRange(asOf time.Time, days int) (curStart, curEnd, prevStart, prevEnd time.Time) {
	curEnd = asOf
	curStart = asOf.AddDate(0, 0, -days)
	prevEnd = curStart
	prevStart = curStart.AddDate(0, 0, -days)
	return curStart, curEnd, prevStart, prevEnd
}

func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseOptionalTime parses a provider timestamp, returning nil for empty or
// unparsable input. Providers send RFC3339 with and without offsets.
func ParseOptionalTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
