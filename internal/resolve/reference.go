package resolve

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// DefaultContextWindow is the number of runes kept on each side of a
// clause reference for disambiguation.
const DefaultContextWindow = 50

// referencePattern recognizes "п. 12", "п 12", "п.12", "пункт 12" and
// "пп. 12". The prefix must not be the tail of a longer word.
var referencePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])((?:пункт[а-я]*|пп?)\s*\.?\s*(\d+))`)

// Reference is one explicit clause reference found in free text
type Reference struct {
	ID      int    `json:"id"`
	Raw     string `json:"raw"`
	Offset  int    `json:"offset"`
	Context string `json:"context"`
}

// FindReferences returns clause references in order of appearance. The
// context window only helps disambiguation; ids are never read from it.
func FindReferences(text string, window int) []Reference {
	if window < 0 {
		window = 0
	}

	var refs []Reference
	for _, m := range referencePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		id, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil || id <= 0 {
			continue
		}
		refs = append(refs, Reference{
			ID:      id,
			Raw:     text[start:end],
			Offset:  start,
			Context: contextWindow(text, start, end, window),
		})
	}
	return refs
}

// contextWindow returns text[start:end] widened by up to n runes per side
func contextWindow(text string, start, end, n int) string {
	from := start
	for i := 0; i < n && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < n && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return text[from:to]
}
