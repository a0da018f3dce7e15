package catalog

import "strings"

// Category groups rules for sorting, tie-breaking and display
type Category string

const (
	CategoryChemical   Category = "chemical"
	CategoryPhysical   Category = "physical"
	CategoryBiological Category = "biological"
	CategoryProfession Category = "profession"
	CategoryOther      Category = "other"
)

// Rank returns the catalog sort precedence of the category.
func (c Category) Rank() int {
	switch c {
	case CategoryChemical:
		return 1
	case CategoryPhysical:
		return 2
	case CategoryBiological:
		return 3
	case CategoryProfession:
		return 4
	default:
		return 5
	}
}

// ParseCategory converts a stored category name. Unknown names map to other.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryChemical:
		return CategoryChemical
	case CategoryPhysical:
		return CategoryPhysical
	case CategoryBiological:
		return CategoryBiological
	case CategoryProfession:
		return CategoryProfession
	default:
		return CategoryOther
	}
}

var (
	professionPrefixes = []string{
		"работы", "работа ", "работа,", "работник", "профессии", "профессия",
		"должности", "управление", "выполнение работ",
	}
	professionOccupations = []string{
		"охранник", "охранн", "сторож", "вахтер", "вахтёр", "инкассатор",
		"телохранител", "служб безопасности", "службы безопасности",
	}
	physicalKeywords = []string{
		"шум", "вибрац", "ультразвук", "инфразвук", "электромагнитн",
		"ионизирующ", "лазерн", "ультрафиолет", "инфракрасн", "температур",
		"освещенност", "освещённост", "электростатическ", "радиац",
	}
	biologicalKeywords = []string{
		"микроорганизм", "бактери", "вирус", "гриб", "патоген", "гельминт",
		"биологическ",
	}
)

// Classify derives the category of a rule from its clean title.
// Checks run in priority order; chemical is the default because the
// regulatory catalog is dominated by substance entries.
func Classify(title string) Category {
	lower := strings.ToLower(strings.TrimSpace(title))

	for _, p := range professionPrefixes {
		if strings.HasPrefix(lower, p) {
			return CategoryProfession
		}
	}
	if containsAny(lower, professionOccupations) {
		return CategoryProfession
	}
	if containsAny(lower, physicalKeywords) {
		return CategoryPhysical
	}
	if containsAny(lower, biologicalKeywords) {
		return CategoryBiological
	}
	return CategoryChemical
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
