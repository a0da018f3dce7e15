// Package resolve maps an employee's free-text hazard description onto
// catalog rules: explicit clause references first, keyword overlap as a
// conservative fallback.
package resolve

import (
	"strings"

	"github.com/ppiankov/medfactors/internal/catalog"
)

// Method tells how a resolution was reached
type Method string

const (
	MethodReference Method = "reference"
	MethodFallback  Method = "fallback"
	MethodNone      Method = "none"
)

// Outcome of a single clause reference
type Outcome string

const (
	OutcomeUnknown       Outcome = "unknown_id"
	OutcomeSingle        Outcome = "single"
	OutcomeDisambiguated Outcome = "disambiguated"
)

// ReferenceTrace explains what happened to one clause reference
type ReferenceTrace struct {
	Reference  Reference        `json:"reference"`
	Outcome    Outcome          `json:"outcome"`
	Chosen     string           `json:"chosen,omitempty"`
	Candidates []CandidateScore `json:"candidates,omitempty"`
}

// Explanation is a resolution with its full rationale
type Explanation struct {
	Method     Method           `json:"method"`
	Rules      []catalog.Rule   `json:"rules"`
	References []ReferenceTrace `json:"references,omitempty"`
	Fallback   *FallbackTrace   `json:"fallback,omitempty"`
}

// Resolver resolves hazard text against a catalog. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
	scorer  *Scorer
	window  int
}

// Option configures a Resolver
type Option func(*Resolver)

// WithContextWindow sets the number of runes kept around each reference
func WithContextWindow(runes int) Option {
	return func(r *Resolver) {
		if runes >= 0 {
			r.window = runes
		}
	}
}

// New creates a resolver over cat
func New(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: cat,
		scorer:  NewScorer(),
		window:  DefaultContextWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the deduplicated rules for text: explicit references,
// or the single best keyword match when references yield nothing.
func (r *Resolver) Resolve(text string) []catalog.Rule {
	return r.Explain(text).Rules
}

// References resolves explicit clause references only. An empty result
// means the caller may try Fallback.
func (r *Resolver) References(text string) []catalog.Rule {
	rules, _ := r.references(text)
	return rules
}

// Fallback returns at most one rule by keyword overlap
func (r *Resolver) Fallback(text string) []catalog.Rule {
	if strings.TrimSpace(text) == "" {
		return []catalog.Rule{}
	}
	rule, _, ok := matchKeywords(r.catalog, strings.ToLower(text))
	if !ok {
		return []catalog.Rule{}
	}
	return []catalog.Rule{rule}
}

// Explain resolves text and records every decision taken
func (r *Resolver) Explain(text string) Explanation {
	exp := Explanation{Method: MethodNone, Rules: []catalog.Rule{}}
	if strings.TrimSpace(text) == "" {
		return exp
	}

	rules, traces := r.references(text)
	exp.References = traces
	if len(rules) > 0 {
		exp.Method = MethodReference
		exp.Rules = rules
		return exp
	}

	rule, ft, ok := matchKeywords(r.catalog, strings.ToLower(text))
	exp.Fallback = &ft
	if ok {
		exp.Method = MethodFallback
		exp.Rules = []catalog.Rule{rule}
	}
	return exp
}

func (r *Resolver) references(text string) ([]catalog.Rule, []ReferenceTrace) {
	refs := FindReferences(text, r.window)
	rules := []catalog.Rule{}
	if len(refs) == 0 {
		return rules, nil
	}

	lowerText := strings.ToLower(text)
	seen := make(map[string]bool)
	traces := make([]ReferenceTrace, 0, len(refs))

	for _, ref := range refs {
		trace := ReferenceTrace{Reference: ref}
		candidates := r.catalog.ByID(ref.ID)

		var chosen catalog.Rule
		switch len(candidates) {
		case 0:
			trace.Outcome = OutcomeUnknown
			traces = append(traces, trace)
			continue
		case 1:
			trace.Outcome = OutcomeSingle
			chosen = candidates[0]
		default:
			combined := strings.ToLower(ref.Context) + " " + lowerText
			best, scores := r.scorer.Pick(candidates, combined)
			trace.Outcome = OutcomeDisambiguated
			trace.Candidates = scores
			chosen = candidates[best]
		}

		trace.Chosen = chosen.UniqueKey
		traces = append(traces, trace)
		if !seen[chosen.UniqueKey] {
			seen[chosen.UniqueKey] = true
			rules = append(rules, chosen)
		}
	}

	return rules, traces
}
