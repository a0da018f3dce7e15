package personalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tags a conditional clause variant
type Kind string

const (
	KindMinExperience   Kind = "min_experience"
	KindMaxExperience   Kind = "max_experience"
	KindExperienceRange Kind = "experience_range"
	KindExamType        Kind = "exam_type"
	KindUnresolvable    Kind = "unresolvable"
)

// Condition is one recognized conditional phrase
type Condition struct {
	Kind        Kind    `json:"kind"`
	Years       float64 `json:"years,omitempty"`
	Min         float64 `json:"min,omitempty"`
	Max         float64 `json:"max,omitempty"`
	Preliminary bool    `json:"preliminary,omitempty"`
	Phrase      string  `json:"phrase"`
}

// Subject carries the employee attributes conditions are evaluated against
type Subject struct {
	ExperienceYears float64 `json:"experience_years"`
	Preliminary     bool    `json:"preliminary"`
}

// NewSubject prefers position experience when it is known (nonzero) and
// falls back to total experience.
func NewSubject(totalYears, positionYears float64, preliminary bool) Subject {
	exp := positionYears
	if exp == 0 {
		exp = totalYears
	}
	return Subject{ExperienceYears: exp, Preliminary: preliminary}
}

// Holds evaluates the condition. Unresolvable conditions never hold: the
// data needed to decide them is not available.
func (c Condition) Holds(s Subject) bool {
	switch c.Kind {
	case KindMinExperience:
		return s.ExperienceYears > c.Years
	case KindMaxExperience:
		return s.ExperienceYears < c.Years
	case KindExperienceRange:
		return c.Min <= s.ExperienceYears && s.ExperienceYears <= c.Max
	case KindExamType:
		return s.Preliminary == c.Preliminary
	default:
		return false
	}
}

// match locates a condition in text. [start, coreEnd) is the phrase
// itself; [coreEnd, end) is an optional trailing comma, colon or dash that
// belongs to the phrase when it opens its clause. Open phrases ("при
// наличии") continue with free text up to the next comma.
type match struct {
	cond    Condition
	start   int
	coreEnd int
	end     int
	open    bool
}

type recognizer struct {
	pattern *regexp.Regexp
	open    bool
	build   func(groups []string) (Condition, bool)
}

const (
	years  = `(?:лет|года|год)`
	number = `(\d+(?:[.,]\d+)?)`
	tenure = `при\s+стаже(?:\s+работы)?\s+`
	tail   = `(\s*[,:–—-]\s*)?`
)

// compile wraps the core pattern in group 1 and appends the optional tail.
// Value groups of the core start at index 2.
func compile(core string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(` + core + `)` + tail)
}

var recognizers = []recognizer{
	{
		pattern: compile(tenure + `(?:от\s+)?` + number + `\s*(?:-|–|—|до)\s*` + number + `\s*` + years),
		build: func(g []string) (Condition, bool) {
			lo, ok1 := parseYears(g[0])
			hi, ok2 := parseYears(g[1])
			if !ok1 || !ok2 {
				return Condition{}, false
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return Condition{Kind: KindExperienceRange, Min: lo, Max: hi}, true
		},
	},
	{
		pattern: compile(tenure + `(?:более|свыше|больше)\s+` + number + `\s*` + years),
		build: func(g []string) (Condition, bool) {
			n, ok := parseYears(g[0])
			return Condition{Kind: KindMinExperience, Years: n}, ok
		},
	},
	{
		pattern: compile(tenure + `(?:менее|меньше|до)\s+` + number + `\s*` + years),
		build: func(g []string) (Condition, bool) {
			n, ok := parseYears(g[0])
			return Condition{Kind: KindMaxExperience, Years: n}, ok
		},
	},
	{
		pattern: compile(`при\s+предварительн[а-яё]*(?:\s+[а-яё]+)?\s+осмотр[а-яё]*`),
		build: func([]string) (Condition, bool) {
			return Condition{Kind: KindExamType, Preliminary: true}, true
		},
	},
	{
		pattern: compile(`при\s+(?:повторн|периодическ)[а-яё]*(?:\s+[а-яё]+)?\s+осмотр[а-яё]*`),
		build: func([]string) (Condition, bool) {
			return Condition{Kind: KindExamType, Preliminary: false}, true
		},
	},
	{
		open:    true,
		pattern: compile(`(?:если\s+имеются|при\s+наличии|через\s+\d+\s*` + years + `|\d+\s*раз[а]?\s+в\s+(?:\d+\s*)?` + years + `)`),
		build: func([]string) (Condition, bool) {
			return Condition{Kind: KindUnresolvable}, true
		},
	},
}

// findFirst returns the earliest condition in text. On equal starts the
// longer phrase wins, so a range beats a bare threshold.
func findFirst(text string) (match, bool) {
	var best match
	found := false

	for _, rec := range recognizers {
		for _, idx := range rec.pattern.FindAllStringSubmatchIndex(text, -1) {
			start := idx[0]
			if precededByLetter(text, start) {
				continue
			}
			groups := make([]string, 0, len(idx)/2)
			for g := 4; g+1 < len(idx); g += 2 {
				if idx[g] < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, text[idx[g]:idx[g+1]])
			}
			// The tail group is last; value groups precede it.
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
			cond, ok := rec.build(groups)
			if !ok {
				continue
			}
			cond.Phrase = strings.TrimSpace(text[idx[2]:idx[3]])
			m := match{cond: cond, start: start, coreEnd: idx[3], end: idx[1], open: rec.open}
			if !found || m.start < best.start || (m.start == best.start && m.end > best.end) {
				best, found = m, true
			}
			break
		}
	}
	return best, found
}

func precededByLetter(text string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func parseYears(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v, err == nil
}
