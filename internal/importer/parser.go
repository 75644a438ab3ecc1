// Package importer implements the bulk import pipeline: a single-pass
// document parser, a reconciliation engine that matches parsed records
// against the user's existing catalog, and a result reporter.
//
// The package is storage-agnostic: the engine talks to the catalog and the
// product-type vocabulary through small interfaces so the whole pipeline can
// be tested with in-memory fakes.
package importer

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/archivistapp/archivist-server/internal/validation"
)

// Input size caps. Entries beyond a cap are ignored with one diagnostic per
// breached limit, which bounds the work done for adversarially large payloads.
const (
	MaxShelves          = 200
	MaxProductsPerShelf = 1000
)

// Product is one validated import record, immutable once constructed.
type Product struct {
	Name string
	Type string
	Year int
}

// Shelf is a named group of validated import records. Shelves that end up
// with zero valid products are dropped by the parser.
type Shelf struct {
	Name     string
	Products []Product
}

// ParseResult holds the kept shelves and every diagnostic collected during
// parsing, in encounter order.
type ParseResult struct {
	Shelves []Shelf
	Errors  []string
}

// rawField preserves document order for case-insensitive key lookup.
type rawField struct {
	key   string
	value any
}

// ParseDocument parses and validates a raw import document. It never returns
// an error: structural failures yield zero shelves and a single diagnostic,
// record-level failures yield one diagnostic each while parsing continues.
//
// The decode is a single forward pass over the document tokens, so cost is
// linear in the input and capped by MaxShelves and MaxProductsPerShelf.
func ParseDocument(data []byte) ParseResult {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))

	tok, err := dec.ReadToken()
	if err != nil {
		return invalidJSON(err)
	}
	if tok.Kind() != '{' {
		// Syntactically valid but not an object of shelves (array, string,
		// number, bool, or null at the top level).
		return ParseResult{
			Errors: []string{"The JSON file must be an object mapping shelf names to arrays of products."},
		}
	}

	var (
		shelves   []Shelf
		errs      []string
		seen      int
		overLimit bool
	)

	for {
		if dec.PeekKind() == '}' {
			if _, err := dec.ReadToken(); err != nil {
				return invalidJSON(err)
			}
			break
		}

		nameTok, err := dec.ReadToken()
		if err != nil {
			return invalidJSON(err)
		}
		rawName := nameTok.String()

		seen++
		if seen > MaxShelves {
			overLimit = true
			if err := skipValue(dec); err != nil {
				return invalidJSON(err)
			}
			continue
		}

		shelf, shelfErrs, err := parseShelf(dec, rawName)
		if err != nil {
			return invalidJSON(err)
		}
		errs = append(errs, shelfErrs...)
		if shelf != nil {
			shelves = append(shelves, *shelf)
		}
	}

	// The document must be a single JSON value; trailing content is a syntax
	// error just like a malformed token.
	if _, err := dec.ReadToken(); err == nil {
		return invalidJSON(fmt.Errorf("unexpected content after top-level object"))
	} else if !errors.Is(err, io.EOF) {
		return invalidJSON(err)
	}

	if overLimit {
		errs = append([]string{fmt.Sprintf("Too many shelves. Max allowed is %d.", MaxShelves)}, errs...)
	}

	return ParseResult{Shelves: shelves, Errors: errs}
}

// parseShelf consumes one shelf value from the decoder and returns the kept
// shelf (nil if dropped) plus its diagnostics. A non-nil error means a JSON
// syntax failure, which is fatal to the whole parse.
func parseShelf(dec *jsontext.Decoder, rawName string) (*Shelf, []string, error) {
	shelfName := strings.TrimSpace(rawName)

	if shelfName == "" {
		if err := skipValue(dec); err != nil {
			return nil, nil, err
		}
		return nil, []string{"Shelf name cannot be empty."}, nil
	}

	if !validation.IsValidShelfName(shelfName) {
		if err := skipValue(dec); err != nil {
			return nil, nil, err
		}
		return nil, []string{fmt.Sprintf("Shelf %q has an invalid name.", shelfName)}, nil
	}

	if dec.PeekKind() != '[' {
		if err := skipValue(dec); err != nil {
			return nil, nil, err
		}
		return nil, []string{fmt.Sprintf("Shelf %q must map to an array of products.", shelfName)}, nil
	}

	if _, err := dec.ReadToken(); err != nil { // consume '['
		return nil, nil, err
	}

	var (
		errs      []string
		products  []Product
		seenNames = make(map[string]struct{})
		index     int
		overLimit bool
	)

	for dec.PeekKind() != ']' {
		if dec.PeekKind() == 0 {
			// Syntax error; surface it via ReadToken.
			if _, err := dec.ReadToken(); err != nil {
				return nil, nil, err
			}
		}

		index++
		if index > MaxProductsPerShelf {
			overLimit = true
			if err := skipValue(dec); err != nil {
				return nil, nil, err
			}
			continue
		}

		item, ok, err := readItem(dec)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			errs = append(errs, fmt.Sprintf("Shelf %q item %d must be an object.", shelfName, index))
			continue
		}

		product, itemErr := parseItem(item, shelfName, index)
		if itemErr != "" {
			errs = append(errs, itemErr)
			continue
		}

		normalized := strings.ToLower(product.Name)
		if _, dup := seenNames[normalized]; dup {
			errs = append(errs, fmt.Sprintf("Shelf %q item %d duplicates %q.", shelfName, index, product.Name))
			continue
		}
		seenNames[normalized] = struct{}{}

		products = append(products, product)
	}

	if _, err := dec.ReadToken(); err != nil { // consume ']'
		return nil, nil, err
	}

	if overLimit {
		errs = append([]string{fmt.Sprintf("Shelf %q has too many products. Max allowed is %d.", shelfName, MaxProductsPerShelf)}, errs...)
	}

	if len(products) == 0 {
		errs = append(errs, fmt.Sprintf("Shelf %q has no valid products.", shelfName))
		return nil, errs, nil
	}

	return &Shelf{Name: shelfName, Products: products}, errs, nil
}

// readItem consumes one array element. Returns ok=false when the element is
// not a JSON object (already consumed); a non-nil error is a syntax failure.
func readItem(dec *jsontext.Decoder) ([]rawField, bool, error) {
	if dec.PeekKind() != '{' {
		if err := skipValue(dec); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	if _, err := dec.ReadToken(); err != nil { // consume '{'
		return nil, false, err
	}

	var fields []rawField
	for dec.PeekKind() != '}' {
		nameTok, err := dec.ReadToken()
		if err != nil {
			return nil, false, err
		}
		// Copy the key before the next decoder call voids the token.
		key := nameTok.String()
		var value any
		if err := json.UnmarshalDecode(dec, &value); err != nil {
			return nil, false, err
		}
		fields = append(fields, rawField{key: key, value: value})
	}
	if _, err := dec.ReadToken(); err != nil { // consume '}'
		return nil, false, err
	}

	return fields, true, nil
}

// parseItem validates one raw item into a Product. Returns a single
// diagnostic string on rejection; the empty string means the item was
// accepted.
func parseItem(item []rawField, shelfName string, index int) (Product, string) {
	rawName := fieldValue(item, "name")
	rawType := fieldValue(item, "type")
	rawYear := fieldValue(item, "year")

	name, ok := rawName.(string)
	if !ok {
		return Product{}, fmt.Sprintf("Shelf %q item %d is missing a Name.", shelfName, index)
	}

	typeName, ok := rawType.(string)
	if !ok {
		return Product{}, fmt.Sprintf("Shelf %q item %d is missing a Type.", shelfName, index)
	}

	year, ok := parseYear(rawYear)
	if !ok {
		return Product{}, fmt.Sprintf("Shelf %q item %d is missing a valid Year.", shelfName, index)
	}

	name = strings.TrimSpace(name)
	typeName = strings.TrimSpace(typeName)

	if name == "" || typeName == "" {
		return Product{}, fmt.Sprintf("Shelf %q item %d must include Name and Type.", shelfName, index)
	}

	if !validation.IsValidProductName(name) {
		return Product{}, fmt.Sprintf("Shelf %q item %d has an invalid Name.", shelfName, index)
	}

	// String-shape check only; vocabulary membership is decided during
	// reconciliation against the live type set.
	if !validation.IsValidProductType(typeName) {
		return Product{}, fmt.Sprintf("Shelf %q item %d has an invalid Type.", shelfName, index)
	}

	if !validation.IsValidProductYear(year) {
		return Product{}, fmt.Sprintf("Shelf %q item %d has an invalid Year.", shelfName, index)
	}

	return Product{Name: name, Type: typeName, Year: year}, ""
}

// fieldValue finds the first field whose key matches case-insensitively.
func fieldValue(item []rawField, key string) any {
	for _, f := range item {
		if strings.EqualFold(f.key, key) {
			return f.value
		}
	}
	return nil
}

// parseYear accepts a JSON number (truncated toward zero) or a string with
// a leading integer. Trailing text after the digits is ignored, which keeps
// sloppy spreadsheet exports like "1995 (remaster)" importable.
func parseYear(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(math.Trunc(v)), true
	case int64:
		return int(v), true
	case string:
		return leadingInt(strings.TrimSpace(v))
	default:
		return 0, false
	}
}

// leadingInt parses an optionally signed integer prefix of s. Absurdly long
// runs of digits clamp instead of wrapping, so they still fail the year
// range check downstream.
func leadingInt(s string) (int, bool) {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n < math.MaxInt32 {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// skipValue discards the next value, whatever its kind.
func skipValue(dec *jsontext.Decoder) error {
	return dec.SkipValue()
}

func invalidJSON(err error) ParseResult {
	return ParseResult{Errors: []string{"Invalid JSON: " + err.Error()}}
}
