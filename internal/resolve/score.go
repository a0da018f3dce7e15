package resolve

import (
	"strings"
	"unicode"

	"github.com/ppiankov/medfactors/internal/catalog"
)

// Score weights for same-numbered candidate disambiguation
const (
	WeightKeyword     = 3
	WeightTitleWord   = 2
	BonusProfession   = 5
	BonusChemical     = 5
	minTitleWordRunes = 4
	scoreFormula      = "keywords*3 + title_words*2 + profession_bonus(5) + chemical_bonus(5)"
)

var (
	professionTerms = []string{
		"работы", "работа", "работник", "профессия", "профессии", "должност",
		"водител", "охранник", "машинист", "оператор", "электромонтер",
		"монтажник", "стропальщик", "верхолаз",
	}
	chemicalTerms = []string{
		"соединени", "вещест", "кислот", "оксид", "раствор", "химическ",
		"смес", "растворител", "пары ", "альдегид", "углеводород", "хлорид",
		"сульфат", "аммиак",
	}
)

// CandidateScore is the transparent scoring breakdown for one candidate
type CandidateScore struct {
	UniqueKey       string           `json:"unique_key"`
	ID              int              `json:"id"`
	Title           string           `json:"title"`
	Category        catalog.Category `json:"category"`
	Score           int              `json:"score"`
	KeywordHits     []string         `json:"keyword_hits,omitempty"`
	TitleWordHits   []string         `json:"title_word_hits,omitempty"`
	ProfessionBonus bool             `json:"profession_bonus,omitempty"`
	ChemicalBonus   bool             `json:"chemical_bonus,omitempty"`
	Formula         string           `json:"formula"`
}

// Scorer ranks catalog rules that share a clause number against the
// text surrounding the reference.
type Scorer struct{}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes a candidate's score against the lowercased combined text
// (context window + full input).
func (s *Scorer) Score(rule catalog.Rule, combined string) CandidateScore {
	cs := CandidateScore{
		UniqueKey: rule.UniqueKey,
		ID:        rule.ID,
		Title:     rule.Title,
		Category:  rule.Category,
		Formula:   scoreFormula,
	}

	for _, kw := range rule.Keywords {
		if kw != "" && strings.Contains(combined, strings.ToLower(kw)) {
			cs.KeywordHits = append(cs.KeywordHits, kw)
		}
	}

	for _, w := range titleWords(rule.Title) {
		if strings.Contains(combined, w) {
			cs.TitleWordHits = append(cs.TitleWordHits, w)
		}
	}

	cs.Score = len(cs.KeywordHits)*WeightKeyword + len(cs.TitleWordHits)*WeightTitleWord

	if rule.Category == catalog.CategoryProfession && containsAnyTerm(combined, professionTerms) {
		cs.ProfessionBonus = true
		cs.Score += BonusProfession
	}
	if rule.Category == catalog.CategoryChemical && containsAnyTerm(combined, chemicalTerms) {
		cs.ChemicalBonus = true
		cs.Score += BonusChemical
	}

	return cs
}

// Pick scores every candidate and returns the index of the winner.
// Candidates must be in catalog order. Ties go to the profession
// category, then the lowest id, then catalog order.
func (s *Scorer) Pick(candidates []catalog.Rule, combined string) (int, []CandidateScore) {
	scores := make([]CandidateScore, len(candidates))
	best := -1
	for i, c := range candidates {
		scores[i] = s.Score(c, combined)
		if best < 0 || beats(scores[i], scores[best]) {
			best = i
		}
	}
	return best, scores
}

// beats reports whether a strictly outranks b. Equal candidates keep the
// earlier one, which is the catalog-order tie-break.
func beats(a, b CandidateScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	ap := a.Category == catalog.CategoryProfession
	bp := b.Category == catalog.CategoryProfession
	if ap != bp {
		return ap
	}
	return a.ID < b.ID
}

// titleWords returns distinct lowercase title words longer than three runes
func titleWords(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < minTitleWordRunes || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func containsAnyTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
