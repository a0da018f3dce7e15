package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/medfactors/internal/personalize"
	"github.com/ppiankov/medfactors/internal/resolve"
)

// WriteExplanation prints a resolution rationale as plain text
func WriteExplanation(w io.Writer, exp resolve.Explanation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "method: %s\n", exp.Method)

	for _, ref := range exp.References {
		fmt.Fprintf(&b, "reference %q -> id %d: %s", ref.Reference.Raw, ref.Reference.ID, ref.Outcome)
		if ref.Chosen != "" {
			fmt.Fprintf(&b, " (%s)", ref.Chosen)
		}
		b.WriteString("\n")
		if ref.Reference.Context != "" {
			fmt.Fprintf(&b, "  context: %q\n", ref.Reference.Context)
		}
		for _, c := range ref.Candidates {
			fmt.Fprintf(&b, "  candidate %s [%s] score=%d %s\n", c.UniqueKey, c.Category, c.Score, c.Formula)
		}
	}

	if fb := exp.Fallback; fb != nil {
		fmt.Fprintf(&b, "fallback: max_hits=%d qualifying=%d at_max=%d", fb.MaxHits, fb.Qualifying, fb.AtMax)
		if fb.Chosen != "" {
			fmt.Fprintf(&b, " chosen=%s", fb.Chosen)
		}
		b.WriteString("\n")
		if len(fb.Hits) > 0 {
			fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(fb.Hits, ", "))
		}
	}

	for _, r := range exp.Rules {
		fmt.Fprintf(&b, "rule %d %s [%s]: %s\n", r.ID, r.Title, r.Category, strings.Join(r.Specialties, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTrace prints personalization steps as plain text
func WriteTrace(w io.Writer, tr personalize.Trace) error {
	var b strings.Builder
	fmt.Fprintf(&b, "experience: %s, preliminary: %t\n", formatYears(tr.Subject.ExperienceYears), tr.Subject.Preliminary)
	if len(tr.Steps) == 0 {
		b.WriteString("no conditions\n")
	}
	for i, st := range tr.Steps {
		fmt.Fprintf(&b, "%d. %s %q holds=%t %s: %q\n", i+1, st.Condition.Kind, st.Condition.Phrase, st.Holds, st.Action, st.Removed)
	}
	fmt.Fprintf(&b, "result: %s\n", tr.Output)
	_, err := io.WriteString(w, b.String())
	return err
}
