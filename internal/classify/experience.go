// Package classify turns free-text employee fields into the numeric and
// boolean attributes the research personalizer evaluates.
package classify

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearsPattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:лет|года|год|гг?\.?)(?:[^\p{L}]|$)`)
	monthsPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:месяц[а-я]*|мес\.?)(?:[^\p{L}]|$)`)
	numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ParseExperience extracts tenure in years from text such as "10 лет",
// "2 года 3 мес." or a bare "5". Months count as twelfths of a year.
// Empty or unparseable input yields 0.
func ParseExperience(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	var years float64
	matched := false

	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseNumber(m[1]); ok {
			years += v
			matched = true
		}
	}
	for _, m := range monthsPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseNumber(m[1]); ok {
			years += v / 12
			matched = true
		}
	}
	if matched {
		return years
	}

	if n := numberPattern.FindString(text); n != "" {
		if v, ok := parseNumber(n); ok {
			return v
		}
	}
	return 0
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
