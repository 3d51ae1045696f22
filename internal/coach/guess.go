package coach

import "strings"

// AllowedCategories are the labels a transaction analysis may assign.
var AllowedCategories = []string{
	"food", "transportation", "entertainment", "utilities",
	"shopping", "healthcare", "housing", "other",
}

// IsAllowedCategory reports whether c is one of AllowedCategories.
func IsAllowedCategory(c string) bool {
	for _, a := range AllowedCategories {
		if a == c {
			return true
		}
	}
	return false
}

var guessRules = []struct {
	category string
	keywords []string
}{
	{"food", []string{"grocery", "market", "food", "restaurant", "cafe", "coffee"}},
	{"transportation", []string{"gas", "fuel", "uber", "lyft", "taxi", "transport"}},
	{"entertainment", []string{"movie", "entertainment", "netflix", "spotify", "game"}},
	{"utilities", []string{"electric", "water", "internet", "phone", "utility"}},
	{"shopping", []string{"amazon", "store", "mall", "shop"}},
}

// GuessCategory assigns a category from description keywords, first rule wins.
func GuessCategory(description string) string {
	d := strings.ToLower(description)
	for _, r := range guessRules {
		for _, kw := range r.keywords {
			if strings.Contains(d, kw) {
				return r.category
			}
		}
	}
	return "other"
}
