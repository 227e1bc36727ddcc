package models

import "time"

// DinerSession identifies a signed-in diner for the duration of their
// session cookie
type DinerSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
