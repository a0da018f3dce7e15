package personalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubject(t *testing.T) {
	assert.Equal(t, 3.0, NewSubject(20, 3, false).ExperienceYears)
	assert.Equal(t, 20.0, NewSubject(20, 0, false).ExperienceYears)
	assert.True(t, NewSubject(0, 0, true).Preliminary)
}

func TestConditionHolds(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		s    Subject
		want bool
	}{
		{"min above", Condition{Kind: KindMinExperience, Years: 10}, Subject{ExperienceYears: 10.5}, true},
		{"min equal", Condition{Kind: KindMinExperience, Years: 10}, Subject{ExperienceYears: 10}, false},
		{"max below", Condition{Kind: KindMaxExperience, Years: 3}, Subject{ExperienceYears: 2}, true},
		{"max equal", Condition{Kind: KindMaxExperience, Years: 3}, Subject{ExperienceYears: 3}, false},
		{"range low edge", Condition{Kind: KindExperienceRange, Min: 1, Max: 5}, Subject{ExperienceYears: 1}, true},
		{"range outside", Condition{Kind: KindExperienceRange, Min: 1, Max: 5}, Subject{ExperienceYears: 0.5}, false},
		{"preliminary", Condition{Kind: KindExamType, Preliminary: true}, Subject{Preliminary: true}, true},
		{"periodic on first exam", Condition{Kind: KindExamType}, Subject{Preliminary: true}, false},
		{"unresolvable", Condition{Kind: KindUnresolvable}, Subject{ExperienceYears: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Holds(tt.s))
		})
	}
}

func TestFindFirst(t *testing.T) {
	tests := []struct {
		text   string
		kind   Kind
		phrase string
	}{
		{"ЭКГ; при стаже более 10 лет, спирометрия", KindMinExperience, "при стаже более 10 лет"},
		{"при стаже работы свыше 5 лет: ЭКГ", KindMinExperience, "при стаже работы свыше 5 лет"},
		{"ЭКГ при стаже от 1 до 3 лет", KindExperienceRange, "при стаже от 1 до 3 лет"},
		{"при стаже до 2 лет, ЭКГ", KindMaxExperience, "при стаже до 2 лет"},
		{"при предварительном осмотре ЭКГ", KindExamType, "при предварительном осмотре"},
		{"ЭКГ 2 раза в год", KindUnresolvable, "2 раза в год"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := findFirst(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.kind, m.cond.Kind)
			assert.Equal(t, tt.phrase, m.cond.Phrase)
		})
	}
}

func TestFindFirst_Values(t *testing.T) {
	m, ok := findFirst("при стаже 5-1,5 года")
	require.True(t, ok)
	assert.Equal(t, KindExperienceRange, m.cond.Kind)
	assert.Equal(t, 1.5, m.cond.Min)
	assert.Equal(t, 5.0, m.cond.Max)

	m, ok = findFirst("при стаже более 7,5 лет")
	require.True(t, ok)
	assert.Equal(t, 7.5, m.cond.Years)
}

func TestFindFirst_EarliestWins(t *testing.T) {
	m, ok := findFirst("при повторном осмотре, ЭКГ; при стаже более 10 лет, спирометрия")
	require.True(t, ok)
	assert.Equal(t, KindExamType, m.cond.Kind)
	assert.Equal(t, 0, m.start)
}

func TestFindFirst_None(t *testing.T) {
	_, ok := findFirst("Общий анализ крови, ЭКГ")
	assert.False(t, ok)
}
