package validation

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// Field length caps, in runes. Shelf names are shorter than product names
// because they render in narrow cards; the type cap matches the vocabulary
// admin form.
const (
	ShelfNameMin = 2
	ShelfNameMax = 50

	ProductNameMin = 2
	ProductNameMax = 80

	ProductTypeMin = 2
	ProductTypeMax = 40

	ArtistNameMin = 2
	ArtistNameMax = 80

	BorrowerNameMin = 2
	BorrowerNameMax = 80

	BorrowerNotesMax = 240

	AccountNameMin = 2
	AccountNameMax = 60

	ProductYearMin       = 1900
	productYearMaxOffset = 1
)

// namePattern is shared by every user-facing name field: first rune a letter
// or digit in any script, remaining runes letters, digits, combining marks,
// or basic punctuation.
var namePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\p{M} '&().,/:;!?-]*$`)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validName checks rune length bounds and the shared name pattern.
func validName(name string, min, max int) bool {
	n := utf8.RuneCountInString(name)
	if n < min || n > max {
		return false
	}
	return namePattern.MatchString(name)
}

// IsValidShelfName reports whether name is acceptable for a shelf or library.
func IsValidShelfName(name string) bool {
	return validName(name, ShelfNameMin, ShelfNameMax)
}

// IsValidProductName reports whether name is acceptable for a product.
func IsValidProductName(name string) bool {
	return validName(name, ProductNameMin, ProductNameMax)
}

// IsValidProductType checks the string shape of a type name. Vocabulary
// membership is a separate concern checked against the live type set.
func IsValidProductType(typeName string) bool {
	return validName(typeName, ProductTypeMin, ProductTypeMax)
}

// IsValidArtistName reports whether name is acceptable for a product's artist.
func IsValidArtistName(name string) bool {
	return validName(name, ArtistNameMin, ArtistNameMax)
}

// IsValidBorrowerName reports whether name is acceptable for a loan borrower.
func IsValidBorrowerName(name string) bool {
	return validName(name, BorrowerNameMin, BorrowerNameMax)
}

// IsValidBorrowerNotes reports whether the notes fit the loan notes cap.
func IsValidBorrowerNotes(notes string) bool {
	return utf8.RuneCountInString(notes) <= BorrowerNotesMax
}

// ProductYearMax returns the newest acceptable product year. Computed at call
// time so the valid range advances each calendar year.
func ProductYearMax() int {
	return time.Now().Year() + productYearMaxOffset
}

// IsValidProductYear reports whether year falls in [1900, currentYear+1].
func IsValidProductYear(year int) bool {
	return year >= ProductYearMin && year <= ProductYearMax()
}

// IsValidAccountName reports whether name is acceptable for a user account.
// Account names carry no character pattern, only length bounds.
func IsValidAccountName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= AccountNameMin && n <= AccountNameMax
}

// IsValidEmail performs a syntactic email check. Deliverability is not
// verified; this only rejects obviously malformed addresses.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
