package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Бензол", CategoryChemical},
		{"Азота неорганические соединения", CategoryChemical},
		{"Локальная вибрация", CategoryPhysical},
		{"Шум производственный", CategoryPhysical},
		{"Пониженная температура воздуха", CategoryPhysical},
		{"Патогенные микроорганизмы", CategoryBiological},
		{"Грибы продуценты", CategoryBiological},
		{"Работы на высоте", CategoryProfession},
		{"Управление наземными транспортными средствами", CategoryProfession},
		{"Выполняемые частными охранниками работы", CategoryProfession},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.title))
		})
	}
}

func TestCategoryRank(t *testing.T) {
	assert.Less(t, CategoryChemical.Rank(), CategoryPhysical.Rank())
	assert.Less(t, CategoryPhysical.Rank(), CategoryBiological.Rank())
	assert.Less(t, CategoryBiological.Rank(), CategoryProfession.Rank())
	assert.Less(t, CategoryProfession.Rank(), CategoryOther.Rank())
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryPhysical, ParseCategory(" Physical "))
	assert.Equal(t, CategoryOther, ParseCategory("cosmic"))
}
