package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// Specialties is the fixed enumeration of canonical specialist roles.
// Order here is the display order used when merging specialist sets.
var Specialties = []string{
	"Терапевт",
	"Профпатолог",
	"Психиатр",
	"Психиатр-нарколог",
	"Невролог",
	"Офтальмолог",
	"Оториноларинголог",
	"Дерматовенеролог",
	"Хирург",
	"Стоматолог",
	"Акушер-гинеколог",
	"Уролог",
	"Эндокринолог",
	"Аллерголог-иммунолог",
	"Онколог",
	"Инфекционист",
	"Травматолог-ортопед",
	"Кардиолог",
	"Пульмонолог",
	"Гематолог",
}

// specialtyIndex maps a canonical name to its display position
var specialtyIndex = func() map[string]int {
	m := make(map[string]int, len(Specialties))
	for i, s := range Specialties {
		m[s] = i
	}
	return m
}()

// bySpecificity holds canonical names longest first so that
// "Психиатр-нарколог" wins over "Психиатр" on substring matches.
var bySpecificity = func() []string {
	names := append([]string(nil), Specialties...)
	sort.SliceStable(names, func(i, j int) bool {
		return len([]rune(names[i])) > len([]rune(names[j]))
	})
	return names
}()

// NormalizeSpecialty maps a free-form specialist entry onto the canonical
// list. Exact (case-insensitive) matches win, then substring matches in
// either direction. The second return value is false when nothing matches;
// such entries are research descriptions rather than specialists.
func NormalizeSpecialty(entry string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(strings.Trim(entry, " .,;:()")))
	if e == "" {
		return "", false
	}

	for _, name := range Specialties {
		if e == strings.ToLower(name) {
			return name, true
		}
	}

	for _, name := range bySpecificity {
		lower := strings.ToLower(name)
		if strings.Contains(e, lower) {
			return name, true
		}
	}

	// Abbreviated entries ("оторинолар") must be long enough to be unambiguous.
	if len([]rune(e)) >= 5 {
		for _, name := range bySpecificity {
			if strings.Contains(strings.ToLower(name), e) {
				return name, true
			}
		}
	}

	return "", false
}

// NormalizeSpecialties normalizes a list of entries, discarding unknown
// ones and duplicates. The result keeps first-seen order.
func NormalizeSpecialties(entries []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range entries {
		name, ok := NormalizeSpecialty(entry)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// findSpecialtySegment returns the byte offset of the first canonical
// specialist name in text, or -1.
func findSpecialtySegment(text string) int {
	lower := strings.ToLower(text)
	first := -1
	for _, name := range Specialties {
		// Also match the "врач-" prefixed form, which starts earlier.
		for _, needle := range []string{"врач-" + strings.ToLower(name), strings.ToLower(name)} {
			idx := strings.Index(lower, needle)
			if idx >= 0 && (first < 0 || idx < first) {
				first = idx
			}
		}
	}
	return first
}

// splitSpecialtySegment splits an embedded specialties segment into
// candidate entries on commas, semicolons and whitespace.
func splitSpecialtySegment(segment string) []string {
	return strings.FieldsFunc(segment, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// SortSpecialties orders canonical names by display order. Unknown names go last.
func SortSpecialties(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, okA := specialtyIndex[names[i]]
		b, okB := specialtyIndex[names[j]]
		switch {
		case okA && okB:
			return a < b
		case okA:
			return true
		default:
			return false
		}
	})
}
