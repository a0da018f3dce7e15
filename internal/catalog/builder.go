package catalog

import (
	"strconv"
	"strings"
	"unicode"
)

// BuilderVersion changes whenever normalization changes, invalidating
// cached snapshots.
const BuilderVersion = "2"

// minTitleLetters is the shortest acceptable factor description
const minTitleLetters = 3

// DropReason explains why a raw row produced no rule
type DropReason string

const (
	DropMalformed     DropReason = "malformed"
	DropInvalidID     DropReason = "invalid_id"
	DropBadTitle      DropReason = "bad_title"
	DropNoSpecialties DropReason = "no_specialties"
	DropDuplicate     DropReason = "duplicate"
)

// BuildStats summarizes a catalog build for data-quality reporting
type BuildStats struct {
	Rows     int                `json:"rows"`
	Retained int                `json:"retained"`
	Dropped  map[DropReason]int `json:"dropped"`
}

// DroppedTotal returns the number of rejected rows
func (s BuildStats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Build normalizes raw rows into a catalog. Malformed rows are silently dropped.
func Build(rows []Row) *Catalog {
	c, _ := BuildWithStats(rows)
	return c
}

// BuildWithStats is Build plus per-reason drop counts.
func BuildWithStats(rows []Row) (*Catalog, BuildStats) {
	stats := BuildStats{
		Rows:    len(rows),
		Dropped: make(map[DropReason]int),
	}

	seen := make(map[string]bool, len(rows))
	rules := make([]Rule, 0, len(rows))

	for _, row := range rows {
		rule, reason, ok := buildRule(row)
		if !ok {
			stats.Dropped[reason]++
			continue
		}
		if seen[rule.UniqueKey] {
			stats.Dropped[DropDuplicate]++
			continue
		}
		seen[rule.UniqueKey] = true
		rules = append(rules, rule)
	}

	stats.Retained = len(rules)
	return newCatalog(rules), stats
}

func buildRule(row Row) (Rule, DropReason, bool) {
	if row.malformed {
		return Rule{}, DropMalformed, false
	}
	id := int(row.ID)
	if id <= 0 {
		return Rule{}, DropInvalidID, false
	}

	title := collapseSpaces(row.Title)
	if !validTitle(title) {
		return Rule{}, DropBadTitle, false
	}

	var specialties []string
	if row.Specialties != nil {
		specialties = NormalizeSpecialties(row.Specialties)
	} else if idx := findSpecialtySegment(title); idx >= 0 {
		specialties = NormalizeSpecialties(splitSpecialtySegment(title[idx:]))
		title = title[:idx]
	}
	if len(specialties) == 0 {
		return Rule{}, DropNoSpecialties, false
	}

	title = strings.TrimRight(title, " ,;:-–—(")
	title = strings.TrimSpace(title)
	if !validTitle(title) {
		return Rule{}, DropBadTitle, false
	}

	keywords := normalizeKeywords(row.Keywords)
	if len(keywords) == 0 {
		keywords = deriveKeywords(title)
	}

	return Rule{
		ID:          id,
		Title:       title,
		Keywords:    keywords,
		Specialties: specialties,
		Category:    Classify(title),
		Research:    strings.TrimSpace(row.Research),
		UniqueKey:   UniqueKey(id, title),
	}, "", true
}

// UniqueKey combines the clause number with the normalized title.
func UniqueKey(id int, title string) string {
	return strconv.Itoa(id) + "|" + NormalizeTitle(title)
}

// NormalizeTitle lowercases, collapses whitespace and trims edge punctuation.
func NormalizeTitle(title string) string {
	t := strings.ToLower(collapseSpaces(title))
	return strings.TrimFunc(t, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// validTitle rejects empty, too short and purely numeric titles
func validTitle(title string) bool {
	letters := 0
	for _, r := range title {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minTitleLetters
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

var keywordStopWords = map[string]bool{
	"работы": true, "работ": true, "связанные": true, "связанных": true,
	"условиях": true, "которые": true, "также": true, "более": true,
	"видов": true, "этого": true, "числе": true, "других": true,
}

// deriveKeywords produces crude stems from the title: words of at least
// five letters with the last two letters removed.
func deriveKeywords(title string) []string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})

	seen := make(map[string]bool)
	var out []string
	for _, w := range words {
		w = strings.Trim(w, "-")
		runes := []rune(w)
		if len(runes) < 5 || keywordStopWords[w] {
			continue
		}
		stem := string(runes[:len(runes)-2])
		if seen[stem] {
			continue
		}
		seen[stem] = true
		out = append(out, stem)
	}
	return out
}
