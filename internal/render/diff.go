package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ResearchDiff shows what personalization removed from raw research text.
// Deletions are wrapped in [-...-] and insertions in {+...+}; with color
// set the ANSI rendering of diffmatchpatch is used instead.
func ResearchDiff(raw, personalized string, color bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(raw, personalized, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if color {
		return dmp.DiffPrettyText(diffs)
	}

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Removed returns the deleted fragments in order, trimmed
func Removed(raw, personalized string) []string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(raw, personalized, false))
	out := []string{}
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffDelete {
			continue
		}
		if t := strings.TrimSpace(d.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
