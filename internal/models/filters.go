package models

// DietPreference is the three-valued diet setting shared by daily and
// permanent filters.
type DietPreference string

const (
	DietAll        DietPreference = "all"
	DietVegetarian DietPreference = "vegetarian"
	DietVegan      DietPreference = "vegan"
)

// Valid reports whether the diet preference is one of the known values.
// The empty string is valid and means "no preference".
func (d DietPreference) Valid() bool {
	switch d {
	case "", DietAll, DietVegetarian, DietVegan:
		return true
	}
	return false
}

// DailyFilters are session-scoped discovery filters. They are never
// persisted; each app session starts from zero values, where every criterion
// is inactive.
type DailyFilters struct {
	PriceMin        int            `json:"priceMin"` // price level, 0 = inactive
	PriceMax        int            `json:"priceMax"` // price level, 0 = inactive
	CuisineTypes    []string       `json:"cuisineTypes"`
	Diet            DietPreference `json:"diet"`
	Proteins        []string       `json:"proteins"` // "chicken", "beef", "pork", "fish", "seafood", "tofu"
	CaloriesEnabled bool           `json:"caloriesEnabled"`
	CaloriesMin     int            `json:"caloriesMin"`
	CaloriesMax     int            `json:"caloriesMax"`
	OpenNow         bool           `json:"openNow"`
}

// PermanentFilters are user-level dietary preferences persisted server-side
// and applied to every search on top of the daily filters.
type PermanentFilters struct {
	Diet DietPreference `json:"diet"`

	// Ingredient-class excludes. Diet preference implies some of these but
	// both are evaluated independently; the effects are the union.
	ExcludeMeat    bool `json:"excludeMeat"`
	ExcludeFish    bool `json:"excludeFish"`
	ExcludeSeafood bool `json:"excludeSeafood"`
	ExcludeEggs    bool `json:"excludeEggs"`
	ExcludeDairy   bool `json:"excludeDairy"`

	Allergies        []string `json:"allergies"`        // matched against dish allergen lists
	AvoidIngredients []string `json:"avoidIngredients"` // free-text, substring match

	DietTypes             []string `json:"dietTypes"`             // "diabetic", "keto", "paleo", "low_carb", "pescatarian"
	ReligiousRestrictions []string `json:"religiousRestrictions"` // "halal", "kosher"
	RequiredFacilities    []string `json:"requiredFacilities"`    // "wheelchair_accessible", "parking", ...
}

// DefaultPermanentFilters returns the zero preference set used when a user
// has no stored preferences (every criterion inactive).
func DefaultPermanentFilters() *PermanentFilters {
	return &PermanentFilters{Diet: DietAll}
}
