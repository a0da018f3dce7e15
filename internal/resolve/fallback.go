package resolve

import (
	"strings"

	"github.com/ppiankov/medfactors/internal/catalog"
)

// FallbackTrace records how the keyword fallback reached its answer
type FallbackTrace struct {
	MaxHits    int      `json:"max_hits"`
	Qualifying int      `json:"qualifying"`
	AtMax      int      `json:"at_max"`
	Chosen     string   `json:"chosen,omitempty"`
	Hits       []string `json:"hits,omitempty"`
}

// matchKeywords returns the best single rule by keyword overlap with the
// lowercased text. At most one rule is ever returned: keyword overlap is a
// weak signal, so the fallback prefers precision over recall. Ties go to
// the lowest id, then catalog order.
func matchKeywords(cat *catalog.Catalog, lower string) (catalog.Rule, FallbackTrace, bool) {
	var (
		trace    FallbackTrace
		best     catalog.Rule
		bestHits []string
		found    bool
	)

	for _, rule := range cat.Rules() {
		var hits []string
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				hits = append(hits, kw)
			}
		}
		if len(hits) == 0 {
			continue
		}
		trace.Qualifying++

		switch {
		case !found || len(hits) > trace.MaxHits:
			best, bestHits, found = rule, hits, true
			trace.MaxHits = len(hits)
			trace.AtMax = 1
		case len(hits) == trace.MaxHits:
			trace.AtMax++
			if rule.ID < best.ID {
				best, bestHits = rule, hits
			}
		}
	}

	if !found {
		return catalog.Rule{}, trace, false
	}
	trace.Chosen = best.UniqueKey
	trace.Hits = bestHits
	return best, trace, true
}
