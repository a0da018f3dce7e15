package model

import "time"

// Report is the outcome of evaluating a whole roster
type Report struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Roster      string      `json:"roster"`
	Catalog     CatalogInfo `json:"catalog"`
	Entries     []Entry     `json:"entries"`
	Totals      Totals      `json:"totals"`
}

// CatalogInfo describes the catalog a report was produced with
type CatalogInfo struct {
	Source    string `json:"source"`
	Rules     int    `json:"rules"`
	FromCache bool   `json:"from_cache"`
}

// Entry is one roster line. Exactly one of Result and Error is set.
type Entry struct {
	Index    int               `json:"index"`
	Employee Employee          `json:"employee"`
	Result   *ResolutionResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Totals aggregates a report
type Totals struct {
	Employees         int            `json:"employees"`
	Resolved          int            `json:"resolved"`
	Unresolved        int            `json:"unresolved"`
	Errors            int            `json:"errors"`
	Preliminary       int            `json:"preliminary"`
	ByMethod          map[string]int `json:"by_method"`
	UniqueSpecialties []string       `json:"unique_specialties"`
}
