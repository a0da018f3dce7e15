package classify

import (
	"strings"
	"time"
)

// PreliminaryAfterYears is the fixed policy window: an exam older than this
// no longer counts, so the next one is preliminary.
const PreliminaryAfterYears = 2

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
	"2006/01/02",
}

// ParseDate parses a last-exam date in any of the accepted layouts
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsPreliminaryExam reports whether the next exam is a first-time one: the
// last-exam date is missing, unparseable or more than two years before now.
func IsPreliminaryExam(lastExam string, now time.Time) bool {
	t, ok := ParseDate(lastExam)
	if !ok {
		return true
	}
	return t.Before(now.AddDate(-PreliminaryAfterYears, 0, 0))
}
