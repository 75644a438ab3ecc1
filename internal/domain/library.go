package domain

import (
	"strings"
	"time"
)

// MatchKey returns the catalog matching key for a name: lower-cased and
// trimmed. Shelf and product names are unique under this key within their
// parent, and the bulk importer matches existing records by it.
func MatchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Library is a user's media catalog. Each user owns exactly one.
type Library struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shelf is a named grouping of products within a library.
type Shelf struct {
	ID        string    `json:"id"`
	LibraryID string    `json:"library_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a single catalogued media item on a shelf.
// Type is a controlled-vocabulary string maintained by admins; products keep
// their type string even if the vocabulary entry is later retired.
type Product struct {
	ID        string    `json:"id"`
	ShelfID   string    `json:"shelf_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Year      int       `json:"year"`
	Artist    string    `json:"artist,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
