// Package catalog builds the immutable in-memory catalog of regulatory
// harmful/dangerous production factor rules.
//
// Clause numbers are not unique: the same number appears in more than one
// regulatory section. Rules are identified by UniqueKey; ID only groups
// candidates for disambiguation.
package catalog

import "sort"

// Rule is one normalized catalog entry
type Rule struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Specialties []string `json:"specialties" yaml:"specialties"`
	Category    Category `json:"category" yaml:"category"`
	Research    string   `json:"research,omitempty" yaml:"research,omitempty"`
	UniqueKey   string   `json:"unique_key" yaml:"unique_key"`
}

// Catalog is the read-only rule set. It is never mutated after
// construction and is safe for concurrent use. A nil *Catalog behaves
// as an empty catalog.
type Catalog struct {
	rules []Rule
	byID  map[int][]int
	byKey map[string]int
}

// newCatalog sorts rules by (category rank, id) and indexes them.
// The input slice is owned by the catalog afterwards.
func newCatalog(rules []Rule) *Catalog {
	sort.SliceStable(rules, func(i, j int) bool {
		ri, rj := rules[i].Category.Rank(), rules[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return rules[i].ID < rules[j].ID
	})

	c := &Catalog{
		rules: rules,
		byID:  make(map[int][]int),
		byKey: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		c.byID[r.ID] = append(c.byID[r.ID], i)
		c.byKey[r.UniqueKey] = i
	}
	return c
}

// Restore rebuilds a catalog from previously built rules (for example a
// cached snapshot). Rules violating catalog invariants are skipped.
func Restore(rules []Rule) *Catalog {
	seen := make(map[string]bool, len(rules))
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.ID <= 0 || len(r.Specialties) == 0 || r.UniqueKey == "" || seen[r.UniqueKey] {
			continue
		}
		seen[r.UniqueKey] = true
		r.Category = ParseCategory(string(r.Category))
		kept = append(kept, r)
	}
	return newCatalog(kept)
}

// Len returns the number of rules
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Rules returns the rules in catalog order. The returned slice is a copy;
// the Rule values share their slices with the catalog and must not be modified.
func (c *Catalog) Rules() []Rule {
	if c == nil {
		return nil
	}
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// ByID returns every rule sharing the clause number, in catalog order.
func (c *Catalog) ByID(id int) []Rule {
	if c == nil {
		return nil
	}
	idx := c.byID[id]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Rule, len(idx))
	for i, n := range idx {
		out[i] = c.rules[n]
	}
	return out
}

// ByKey looks a rule up by its unique key.
func (c *Catalog) ByKey(key string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	i, ok := c.byKey[key]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// Position returns the catalog order index of the rule with the given key, or -1.
func (c *Catalog) Position(key string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.byKey[key]; ok {
		return i
	}
	return -1
}

// Counts returns the number of rules per category.
func (c *Catalog) Counts() map[Category]int {
	counts := make(map[Category]int)
	if c == nil {
		return counts
	}
	for _, r := range c.rules {
		counts[r.Category]++
	}
	return counts
}
