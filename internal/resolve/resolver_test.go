package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/medfactors/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.Build([]catalog.Row{
		{ID: 1, Title: "Бензол", Keywords: []string{"бензол"}, Specialties: catalog.SpecialtyList{"Терапевт"}},
		{ID: 2, Title: "Толуол", Keywords: []string{"толуол", "растворител"}, Specialties: catalog.SpecialtyList{"Невролог"}},
		{ID: 3, Title: "Ксилол", Keywords: []string{"ксилол", "растворител"}, Specialties: catalog.SpecialtyList{"Невролог"}},
		{ID: 4, Title: "Азота оксиды", Keywords: []string{"азот", "оксид"}, Specialties: catalog.SpecialtyList{"Пульмонолог"}},
		{ID: 4, Title: "Работы на высоте", Keywords: []string{"высот"}, Specialties: catalog.SpecialtyList{"Невролог", "Офтальмолог"}},
		{ID: 7, Title: "Производственный шум", Keywords: []string{"шум"}, Specialties: catalog.SpecialtyList{"Оториноларинголог"}},
	})
}

func ids(rules []catalog.Rule) []int {
	out := make([]int, len(rules))
	for i, r := range rules {
		out[i] = r.ID
	}
	return out
}

func TestFindReferences(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"п. 1", []int{1}},
		{"п.12", []int{12}},
		{"п 3, п. 7", []int{3, 7}},
		{"пункт 4.2.1", []int{4}},
		{"согласно пункту 18", []int{18}},
		{"пп. 5 и П. 6", []int{5, 6}},
		{"ПУНКТ 9", []int{9}},
		{"шп. 5", nil},
		{"п. 0", nil},
		{"без ссылок", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			refs := FindReferences(tt.text, DefaultContextWindow)
			var got []int
			for _, r := range refs {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindReferences_Context(t *testing.T) {
	text := "работа с оксидами, п. 4, высота"
	refs := FindReferences(text, 5)
	require.Len(t, refs, 1)
	assert.Equal(t, "п. 4", refs[0].Raw)
	assert.Equal(t, "ами, п. 4, выс", refs[0].Context)

	refs = FindReferences("п. 4", 50)
	require.Len(t, refs, 1)
	assert.Equal(t, "п. 4", refs[0].Context)
	assert.Equal(t, 0, refs[0].Offset)
}

func TestResolve_References(t *testing.T) {
	r := New(testCatalog())

	assert.Equal(t, []int{1, 7}, ids(r.Resolve("п. 1, п. 7")))
	assert.Equal(t, []int{1}, ids(r.Resolve("п. 1 и снова пункт 1")))
	assert.Equal(t, []int{7, 1}, ids(r.Resolve("п. 7; п. 1")))
}

func TestResolve_Disambiguation(t *testing.T) {
	r := New(testCatalog())

	tests := []struct {
		name  string
		text  string
		title string
	}{
		{"profession context", "п. 4 работы на высоте", "Работы на высоте"},
		{"chemical context", "п. 4 (оксиды азота)", "Азота оксиды"},
		{"no signal prefers profession", "п. 4", "Работы на высоте"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := r.Resolve(tt.text)
			require.Len(t, rules, 1)
			assert.Equal(t, tt.title, rules[0].Title)
		})
	}
}

func TestResolve_Fallback(t *testing.T) {
	r := New(testCatalog())

	rules := r.Resolve("контакт с бензолом")
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].ID)

	// толуол and ксилол both hit two keywords; the lower id wins.
	rules = r.Resolve("растворители: толуол, ксилол")
	require.Len(t, rules, 1)
	assert.Equal(t, 2, rules[0].ID)

	assert.Empty(t, r.Resolve("офисная работа"))
}

func TestResolve_FallbackNeverReturnsMoreThanOne(t *testing.T) {
	r := New(testCatalog())
	texts := []string{
		"бензол толуол ксилол азот оксид высота шум растворитель",
		"шум",
		"",
	}
	for _, text := range texts {
		assert.LessOrEqual(t, len(r.Fallback(text)), 1, text)
	}
}

func TestResolve_UnknownReferenceFallsBack(t *testing.T) {
	r := New(testCatalog())

	exp := r.Explain("п. 99, шум")
	assert.Equal(t, MethodFallback, exp.Method)
	require.Len(t, exp.References, 1)
	assert.Equal(t, OutcomeUnknown, exp.References[0].Outcome)
	require.NotNil(t, exp.Fallback)
	assert.Equal(t, []string{"шум"}, exp.Fallback.Hits)
	assert.Equal(t, []int{7}, ids(exp.Rules))
}

func TestResolve_Empty(t *testing.T) {
	r := New(testCatalog())

	exp := r.Explain("   ")
	assert.Equal(t, MethodNone, exp.Method)
	assert.NotNil(t, exp.Rules)
	assert.Empty(t, exp.Rules)

	assert.NotNil(t, r.Resolve(""))
	assert.NotNil(t, r.References(""))
	assert.NotNil(t, r.Fallback(""))
}

func TestResolve_EmptyCatalog(t *testing.T) {
	r := New(catalog.Build(nil))
	assert.Empty(t, r.Resolve("п. 1 бензол"))
}

func TestExplain_Disambiguation(t *testing.T) {
	r := New(testCatalog())

	exp := r.Explain("п. 4 работы на высоте")
	assert.Equal(t, MethodReference, exp.Method)
	require.Len(t, exp.References, 1)

	trace := exp.References[0]
	assert.Equal(t, OutcomeDisambiguated, trace.Outcome)
	require.Len(t, trace.Candidates, 2)
	for _, c := range trace.Candidates {
		assert.Equal(t, scoreFormula, c.Formula)
	}
	assert.Equal(t, catalog.UniqueKey(4, "Работы на высоте"), trace.Chosen)
}

func TestWithContextWindow(t *testing.T) {
	r := New(testCatalog(), WithContextWindow(0))
	assert.Equal(t, 0, r.window)

	r = New(testCatalog(), WithContextWindow(-3))
	assert.Equal(t, DefaultContextWindow, r.window)
}

// assertSelfConsistent resolves "<title> п. <id>" for every rule. The rule
// must come back unless a same-numbered candidate scored at least as high.
func assertSelfConsistent(t *testing.T, cat *catalog.Catalog) {
	t.Helper()
	r := New(cat)

	for _, rule := range cat.Rules() {
		text := fmt.Sprintf("%s п. %d", rule.Title, rule.ID)
		exp := r.Explain(text)
		require.Equal(t, MethodReference, exp.Method, text)

		found := false
		for _, got := range exp.Rules {
			if got.UniqueKey == rule.UniqueKey {
				found = true
				break
			}
		}
		if found {
			continue
		}

		var trace *ReferenceTrace
		for i := range exp.References {
			if exp.References[i].Reference.ID == rule.ID {
				trace = &exp.References[i]
				break
			}
		}
		require.NotNil(t, trace, "no reference trace for %q", text)
		require.Equal(t, OutcomeDisambiguated, trace.Outcome, text)

		scores := make(map[string]int, len(trace.Candidates))
		for _, c := range trace.Candidates {
			scores[c.UniqueKey] = c.Score
		}
		assert.GreaterOrEqual(t, scores[trace.Chosen], scores[rule.UniqueKey],
			"%q resolved to %s over a higher scoring %s", text, trace.Chosen, rule.UniqueKey)
	}
}

func TestResolve_SelfConsistentBuiltin(t *testing.T) {
	rows, err := catalog.DecodeJSON(catalog.BuiltinSource())
	require.NoError(t, err)
	cat := catalog.Build(rows)
	require.NotZero(t, cat.Len())

	assertSelfConsistent(t, cat)
}

func TestResolve_SelfConsistentCollidingIDs(t *testing.T) {
	cat := catalog.Build([]catalog.Row{
		{ID: 4, Title: "Азота оксиды", Keywords: []string{"азот", "оксид"}, Specialties: catalog.SpecialtyList{"Пульмонолог"}},
		{ID: 4, Title: "Работы на высоте", Keywords: []string{"высот"}, Specialties: catalog.SpecialtyList{"Невролог"}},
		{ID: 6, Title: "Свинец и его соединения", Keywords: []string{"свинец"}, Specialties: catalog.SpecialtyList{"Гематолог"}},
		{ID: 6, Title: "Работы с источниками свинца", Specialties: catalog.SpecialtyList{"Терапевт"}},
		{ID: 9, Title: "Пыль угольная", Keywords: []string{"пыль", "уголь"}, Specialties: catalog.SpecialtyList{"Пульмонолог"}},
		{ID: 9, Title: "Пыль асбестсодержащая", Keywords: []string{"пыль", "асбест"}, Specialties: catalog.SpecialtyList{"Онколог"}},
		{ID: 9, Title: "Пыль", Keywords: []string{"пыль"}, Specialties: catalog.SpecialtyList{"Терапевт"}},
	})
	require.Len(t, cat.ByID(9), 3)

	assertSelfConsistent(t, cat)
}
