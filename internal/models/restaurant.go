package models

import (
	"strings"
	"time"
)

// Restaurant represents a restaurant in the system
type Restaurant struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cuisine     string   `json:"cuisine"`
	PriceLevel  int      `json:"priceLevel"` // 1 (cheap) .. 4 (fine dining)
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Tags        []string `json:"tags"`       // dietary/religious tags: "halal", "kosher", "vegan_options", ...
	Facilities  []string `json:"facilities"` // "wheelchair_accessible", "parking", "wifi", "outdoor_seating", ...
	ImageURL    string   `json:"imageUrl"`

	// Opening window in minutes since midnight, local to the restaurant.
	// ClosesAt may be smaller than OpensAt for places open past midnight.
	OpensAt  int `json:"opensAt"`
	ClosesAt int `json:"closesAt"`

	IsVisible bool      `json:"isVisible"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOpenAt reports whether the restaurant is open at the given time.
func (r *Restaurant) IsOpenAt(t time.Time) bool {
	if r.OpensAt == r.ClosesAt {
		// Degenerate window is treated as always open (hours unknown)
		return true
	}
	minutes := t.Hour()*60 + t.Minute()
	if r.OpensAt < r.ClosesAt {
		return minutes >= r.OpensAt && minutes < r.ClosesAt
	}
	// Window wraps past midnight
	return minutes >= r.OpensAt || minutes < r.ClosesAt
}

// HasTag reports whether the restaurant carries the given tag (case-insensitive).
func (r *Restaurant) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasFacility reports whether the restaurant offers the given facility (case-insensitive).
func (r *Restaurant) HasFacility(facility string) bool {
	for _, f := range r.Facilities {
		if strings.EqualFold(f, facility) {
			return true
		}
	}
	return false
}

// PublicRestaurantResponse represents the public API response format
type PublicRestaurantResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Cuisine    string   `json:"cuisine"`
	PriceLevel int      `json:"priceLevel"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Tags       []string `json:"tags"`
	Facilities []string `json:"facilities"`
	ImageURL   string   `json:"imageUrl"`
	Link       string   `json:"link"`
}

// ToPublicResponse converts a Restaurant to PublicRestaurantResponse
func (r *Restaurant) ToPublicResponse(baseURL string) PublicRestaurantResponse {
	return PublicRestaurantResponse{
		ID:         r.ID,
		Name:       r.Name,
		Cuisine:    r.Cuisine,
		PriceLevel: r.PriceLevel,
		Address:    r.Address,
		City:       r.City,
		Tags:       r.Tags,
		Facilities: r.Facilities,
		ImageURL:   r.ImageURL,
		Link:       baseURL + "/restaurant/" + r.Slug,
	}
}

// RestaurantWithDishes bundles a restaurant with its menu for detail responses
type RestaurantWithDishes struct {
	Restaurant *Restaurant `json:"restaurant"`
	Dishes     []*Dish     `json:"dishes"`
}
