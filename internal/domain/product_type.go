package domain

import "time"

// ProductType is an entry in the controlled vocabulary of media types
// (e.g., "DVD", "Vinyl"). Administratively maintained; names are unique
// case-insensitively.
type ProductType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
