package models

import "strings"

// Dish represents a single menu item belonging to a restaurant
type Dish struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"` // "starter", "main", "dessert", "drink"
	Price        float64  `json:"price"`
	Calories     int      `json:"calories"` // 0 when unknown
	Ingredients  []string `json:"ingredients"`
	Allergens    []string `json:"allergens"` // "peanuts", "gluten", "shellfish", ...
	Tags         []string `json:"tags"`      // ingredient classes and diet markers: "meat", "fish", "dairy", "vegan", ...
	PhotoURL     string   `json:"photoUrl"`
	IsAvailable  bool     `json:"isAvailable"`
}

// HasTag reports whether the dish carries the given tag (case-insensitive).
func (d *Dish) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the dish carries at least one of the given tags.
func (d *Dish) HasAnyTag(tags ...string) bool {
	for _, tag := range tags {
		if d.HasTag(tag) {
			return true
		}
	}
	return false
}

// HasAllergen reports whether the dish lists the given allergen (case-insensitive).
func (d *Dish) HasAllergen(allergen string) bool {
	for _, a := range d.Allergens {
		if strings.EqualFold(a, allergen) {
			return true
		}
	}
	return false
}

// ContainsIngredient reports whether any listed ingredient contains the given
// term as a substring (case-insensitive). Free-text avoid lists match
// loosely: "onion" should exclude "red onion".
func (d *Dish) ContainsIngredient(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, ing := range d.Ingredients {
		if strings.Contains(strings.ToLower(ing), term) {
			return true
		}
	}
	return false
}
