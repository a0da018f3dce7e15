package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpecialty(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Терапевт", "Терапевт", true},
		{"терапевт", "Терапевт", true},
		{"Врач-офтальмолог", "Офтальмолог", true},
		{"врач психиатр-нарколог", "Психиатр-нарколог", true},
		{"Психиатр", "Психиатр", true},
		{"оторинолар", "Оториноларинголог", true},
		{"Аллерголог", "Аллерголог-иммунолог", true},
		{"лор", "", false},
		{"Спирометрия", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeSpecialty(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSpecialties(t *testing.T) {
	got := NormalizeSpecialties([]string{"Невролог", "врач-невролог", "Спирометрия", "Хирург"})
	assert.Equal(t, []string{"Невролог", "Хирург"}, got)
}

func TestSortSpecialties(t *testing.T) {
	names := []string{"Гематолог", "Неизвестный", "Невролог", "Терапевт"}
	SortSpecialties(names)
	assert.Equal(t, []string{"Терапевт", "Невролог", "Гематолог", "Неизвестный"}, names)
}

func TestFindSpecialtySegment(t *testing.T) {
	title := "Пыль (зерновая) Оториноларинголог, Дерматовенеролог"
	idx := findSpecialtySegment(title)
	assert.Equal(t, "Оториноларинголог, Дерматовенеролог", title[idx:])

	title = "Работы на высоте Врач-невролог"
	idx = findSpecialtySegment(title)
	assert.Equal(t, "Врач-невролог", title[idx:])

	assert.Equal(t, -1, findSpecialtySegment("Бензол"))
}
