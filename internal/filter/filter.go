// Package filter implements conjunctive restaurant/dish filter matching.
//
// Two independently-shaped filter sets are applied: session-scoped daily
// filters and persisted permanent filters. A restaurant passes only if it
// satisfies every active criterion in both sets; an inactive criterion (zero
// value, empty set, disabled range) imposes no constraint, and missing
// optional dish fields never exclude.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/tastebud/tastebud-api/internal/models"
)

// Ingredient-class tags used by the diet-implication rule.
const (
	tagMeat    = "meat"
	tagFish    = "fish"
	tagSeafood = "seafood"
	tagEggs    = "eggs"
	tagDairy   = "dairy"
)

// dietTypeExcludedTags maps a named diet type to the dish tags it rules out.
// Unknown dish tags simply never match (permissive default).
var dietTypeExcludedTags = map[string][]string{
	"diabetic":    {"sugary"},
	"keto":        {"high_carb", "sugary"},
	"paleo":       {"high_carb", "processed"},
	"low_carb":    {"high_carb"},
	"pescatarian": {tagMeat},
}

// MatchRestaurant reports whether a restaurant passes both filter sets.
// Dish-dependent criteria are evaluated against the restaurant's dishes: the
// restaurant passes if at least one available dish passes. A nil dish slice
// means dish data was not loaded and does not exclude.
func MatchRestaurant(r *models.Restaurant, dishes []*models.Dish, daily *models.DailyFilters, perm *models.PermanentFilters, now time.Time) bool {
	if !restaurantPasses(r, daily, perm, now) {
		return false
	}

	if !NeedsDishData(daily, perm) || dishes == nil {
		return true
	}

	for _, d := range dishes {
		if !d.IsAvailable {
			continue
		}
		if MatchDish(d, daily, perm) {
			return true
		}
	}
	return false
}

// Restaurants narrows a restaurant list, looking up each restaurant's dishes
// in dishesByRestaurant for the dish-dependent criteria.
func Restaurants(list []*models.Restaurant, dishesByRestaurant map[string][]*models.Dish, daily *models.DailyFilters, perm *models.PermanentFilters, now time.Time) []*models.Restaurant {
	result := make([]*models.Restaurant, 0)
	for _, r := range list {
		if MatchRestaurant(r, dishesByRestaurant[r.ID], daily, perm, now) {
			result = append(result, r)
		}
	}
	return result
}

// Dishes narrows a dish list by the dish-level criteria of both filter sets.
func Dishes(dishes []*models.Dish, daily *models.DailyFilters, perm *models.PermanentFilters) []*models.Dish {
	result := make([]*models.Dish, 0)
	for _, d := range dishes {
		if MatchDish(d, daily, perm) {
			result = append(result, d)
		}
	}
	return result
}

// NeedsDishData reports whether any active criterion requires dish records.
// Callers use this to skip loading menus when only restaurant-level criteria
// are active.
func NeedsDishData(daily *models.DailyFilters, perm *models.PermanentFilters) bool {
	if daily != nil {
		if daily.Diet == models.DietVegetarian || daily.Diet == models.DietVegan {
			return true
		}
		if len(daily.Proteins) > 0 || daily.CaloriesEnabled {
			return true
		}
	}
	if perm != nil {
		if perm.Diet == models.DietVegetarian || perm.Diet == models.DietVegan {
			return true
		}
		if perm.ExcludeMeat || perm.ExcludeFish || perm.ExcludeSeafood || perm.ExcludeEggs || perm.ExcludeDairy {
			return true
		}
		if len(perm.Allergies) > 0 || len(perm.AvoidIngredients) > 0 || len(perm.DietTypes) > 0 {
			return true
		}
	}
	return false
}

// restaurantPasses evaluates the restaurant-level criteria of both sets.
func restaurantPasses(r *models.Restaurant, daily *models.DailyFilters, perm *models.PermanentFilters, now time.Time) bool {
	if daily != nil {
		if daily.PriceMin > 0 && r.PriceLevel < daily.PriceMin {
			return false
		}
		if daily.PriceMax > 0 && r.PriceLevel > daily.PriceMax {
			return false
		}
		if len(daily.CuisineTypes) > 0 && !containsFold(daily.CuisineTypes, r.Cuisine) {
			return false
		}
		if daily.OpenNow && !r.IsOpenAt(now) {
			return false
		}
	}

	if perm != nil {
		for _, restriction := range perm.ReligiousRestrictions {
			if !r.HasTag(restriction) {
				return false
			}
		}
		for _, facility := range perm.RequiredFacilities {
			if !r.HasFacility(facility) {
				return false
			}
		}
	}

	return true
}

// MatchDish evaluates the dish-level criteria of both sets against one dish.
func MatchDish(d *models.Dish, daily *models.DailyFilters, perm *models.PermanentFilters) bool {
	if daily != nil {
		if excluded := dietExcludedTags(daily.Diet); len(excluded) > 0 && d.HasAnyTag(excluded...) {
			return false
		}
		if len(daily.Proteins) > 0 && !d.HasAnyTag(daily.Proteins...) {
			return false
		}
		if daily.CaloriesEnabled && d.Calories > 0 {
			if daily.CaloriesMin > 0 && d.Calories < daily.CaloriesMin {
				return false
			}
			if daily.CaloriesMax > 0 && d.Calories > daily.CaloriesMax {
				return false
			}
		}
	}

	if perm != nil {
		// Diet preference and exclude toggles are evaluated independently;
		// their effects are the union.
		if excluded := dietExcludedTags(perm.Diet); len(excluded) > 0 && d.HasAnyTag(excluded...) {
			return false
		}
		if perm.ExcludeMeat && d.HasTag(tagMeat) {
			return false
		}
		if perm.ExcludeFish && d.HasTag(tagFish) {
			return false
		}
		if perm.ExcludeSeafood && d.HasTag(tagSeafood) {
			return false
		}
		if perm.ExcludeEggs && d.HasTag(tagEggs) {
			return false
		}
		if perm.ExcludeDairy && d.HasTag(tagDairy) {
			return false
		}
		for _, allergy := range perm.Allergies {
			if d.HasAllergen(allergy) {
				return false
			}
		}
		for _, term := range perm.AvoidIngredients {
			if d.ContainsIngredient(term) {
				return false
			}
		}
		for _, dietType := range perm.DietTypes {
			if excluded, ok := dietTypeExcludedTags[strings.ToLower(dietType)]; ok && d.HasAnyTag(excluded...) {
				return false
			}
		}
	}

	return true
}

// dietExcludedTags returns the ingredient-class tags a diet preference rules
// out: vegan implies all five excludes, vegetarian the meat/fish/seafood ones.
func dietExcludedTags(diet models.DietPreference) []string {
	switch diet {
	case models.DietVegan:
		return []string{tagMeat, tagFish, tagSeafood, tagEggs, tagDairy}
	case models.DietVegetarian:
		return []string{tagMeat, tagFish, tagSeafood}
	default:
		return nil
	}
}

// Presets set several daily-filter fields atomically.
var presets = map[string]func(*models.DailyFilters){
	"healthy": func(f *models.DailyFilters) {
		f.CaloriesEnabled = true
		f.CaloriesMax = 650
	},
	"budget_eats": func(f *models.DailyFilters) {
		f.PriceMin = 0
		f.PriceMax = 2
	},
	"date_night": func(f *models.DailyFilters) {
		f.PriceMin = 3
		f.PriceMax = 0
		f.OpenNow = true
	},
	"plant_based": func(f *models.DailyFilters) {
		f.Diet = models.DietVegan
	},
}

// ApplyPreset applies a named preset to the daily filters.
func ApplyPreset(f *models.DailyFilters, name string) error {
	apply, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown filter preset: %q", name)
	}
	apply(f)
	return nil
}

// PresetNames returns the known preset names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
