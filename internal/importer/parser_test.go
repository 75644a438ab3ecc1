package importer

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_ValidDocument(t *testing.T) {
	doc := `{
		"Living Room": [
			{"Name": "Blade Runner", "Type": "VHS", "Year": 1982},
			{"Name": "Kind of Blue", "Type": "Vinyl", "Year": 1959}
		],
		"Studio Shelf": [
			{"Name": "In Rainbows", "Type": "CD", "Year": 2007}
		]
	}`

	result := ParseDocument([]byte(doc))

	require.Empty(t, result.Errors)
	require.Len(t, result.Shelves, 2)
	assert.Equal(t, "Living Room", result.Shelves[0].Name)
	assert.Equal(t, []Product{
		{Name: "Blade Runner", Type: "VHS", Year: 1982},
		{Name: "Kind of Blue", Type: "Vinyl", Year: 1959},
	}, result.Shelves[0].Products)
	assert.Equal(t, "Studio Shelf", result.Shelves[1].Name)
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	result := ParseDocument([]byte("not json"))

	assert.Empty(t, result.Shelves)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Invalid JSON:"), result.Errors[0])
}

func TestParseDocument_TrailingContent(t *testing.T) {
	result := ParseDocument([]byte(`{"A": []} trailing`))

	assert.Empty(t, result.Shelves)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Invalid JSON:"), result.Errors[0])
}

func TestParseDocument_TopLevelNotObject(t *testing.T) {
	for _, doc := range []string{`[]`, `"shelves"`, `42`, `null`, `true`} {
		result := ParseDocument([]byte(doc))

		assert.Empty(t, result.Shelves, doc)
		require.Len(t, result.Errors, 1, doc)
		assert.Equal(t, "The JSON file must be an object mapping shelf names to arrays of products.", result.Errors[0])
	}
}

func TestParseDocument_ShelfNameValidation(t *testing.T) {
	doc := `{
		"   ": [{"Name": "Heat", "Type": "DVD", "Year": 1995}],
		"<bad>": [{"Name": "Heat", "Type": "DVD", "Year": 1995}],
		"Good Shelf": [{"Name": "Heat", "Type": "DVD", "Year": 1995}]
	}`

	result := ParseDocument([]byte(doc))

	require.Len(t, result.Shelves, 1)
	assert.Equal(t, "Good Shelf", result.Shelves[0].Name)
	assert.Equal(t, []string{
		"Shelf name cannot be empty.",
		`Shelf "<bad>" has an invalid name.`,
	}, result.Errors)
}

func TestParseDocument_ShelfValueMustBeArray(t *testing.T) {
	doc := `{"Living Room": {"Name": "Heat"}}`

	result := ParseDocument([]byte(doc))

	assert.Empty(t, result.Shelves)
	assert.Equal(t, []string{`Shelf "Living Room" must map to an array of products.`}, result.Errors)
}

func TestParseDocument_ItemValidation(t *testing.T) {
	doc := `{"Shelf": [
		"not an object",
		{"Type": "DVD", "Year": 1995},
		{"Name": "Heat", "Year": 1995},
		{"Name": "Heat", "Type": "DVD", "Year": "soon"},
		{"Name": "  ", "Type": "DVD", "Year": 1995},
		{"Name": "<Heat>", "Type": "DVD", "Year": 1995},
		{"Name": "Heat", "Type": "<DVD>", "Year": 1995},
		{"Name": "Heat", "Type": "DVD", "Year": 1850},
		{"Name": "Heat", "Type": "DVD", "Year": 1995},
		{"Name": "HEAT", "Type": "DVD", "Year": 1995}
	]}`

	result := ParseDocument([]byte(doc))

	require.Len(t, result.Shelves, 1)
	assert.Equal(t, []Product{{Name: "Heat", Type: "DVD", Year: 1995}}, result.Shelves[0].Products)
	assert.Equal(t, []string{
		`Shelf "Shelf" item 1 must be an object.`,
		`Shelf "Shelf" item 2 is missing a Name.`,
		`Shelf "Shelf" item 3 is missing a Type.`,
		`Shelf "Shelf" item 4 is missing a valid Year.`,
		`Shelf "Shelf" item 5 must include Name and Type.`,
		`Shelf "Shelf" item 6 has an invalid Name.`,
		`Shelf "Shelf" item 7 has an invalid Type.`,
		`Shelf "Shelf" item 8 has an invalid Year.`,
		`Shelf "Shelf" item 10 duplicates "HEAT".`,
	}, result.Errors)
}

func TestParseDocument_CaseInsensitiveFieldKeys(t *testing.T) {
	doc := `{"Shelf": [{"name": "Heat", "TYPE": "DVD", "yEaR": 1995}]}`

	result := ParseDocument([]byte(doc))

	require.Empty(t, result.Errors)
	require.Len(t, result.Shelves, 1)
	assert.Equal(t, []Product{{Name: "Heat", Type: "DVD", Year: 1995}}, result.Shelves[0].Products)
}

func TestParseDocument_YearCoercion(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{`1995`, 1995, true},
		{`1995.9`, 1995, true},
		{`"1995"`, 1995, true},
		{`" 1995 "`, 1995, true},
		{`"1995.5"`, 1995, true},
		{`"1995abc"`, 1995, true},
		{`"1995 (remaster)"`, 1995, true},
		{`""`, 0, false},
		{`"abc1995"`, 0, false},
		{`"soon"`, 0, false},
		{`true`, 0, false},
		{`null`, 0, false},
		{`[1995]`, 0, false},
	}

	for _, tt := range tests {
		doc := fmt.Sprintf(`{"Shelf": [{"Name": "Heat", "Type": "DVD", "Year": %s}]}`, tt.raw)
		result := ParseDocument([]byte(doc))

		if tt.valid {
			require.Empty(t, result.Errors, tt.raw)
			require.Len(t, result.Shelves, 1, tt.raw)
			assert.Equal(t, tt.want, result.Shelves[0].Products[0].Year, tt.raw)
		} else {
			assert.Empty(t, result.Shelves, tt.raw)
			require.Len(t, result.Errors, 2, tt.raw)
			assert.Equal(t, `Shelf "Shelf" item 1 is missing a valid Year.`, result.Errors[0], tt.raw)
		}
	}
}

func TestParseDocument_NextYearAccepted(t *testing.T) {
	next := time.Now().Year() + 1
	doc := fmt.Sprintf(`{"Shelf": [{"Name": "Heat", "Type": "DVD", "Year": %d}]}`, next)

	result := ParseDocument([]byte(doc))

	require.Empty(t, result.Errors)
	require.Len(t, result.Shelves, 1)

	doc = fmt.Sprintf(`{"Shelf": [{"Name": "Heat", "Type": "DVD", "Year": %d}]}`, next+1)
	result = ParseDocument([]byte(doc))

	assert.Empty(t, result.Shelves)
}

func TestParseDocument_EmptyShelfDropped(t *testing.T) {
	doc := `{"Empty": [], "Bad Only": ["nope"]}`

	result := ParseDocument([]byte(doc))

	assert.Empty(t, result.Shelves)
	assert.Equal(t, []string{
		`Shelf "Empty" has no valid products.`,
		`Shelf "Bad Only" item 1 must be an object.`,
		`Shelf "Bad Only" has no valid products.`,
	}, result.Errors)
}

func TestParseDocument_TooManyShelves(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{")
	for i := 0; i <= MaxShelves; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"Shelf %d": [{"Name": "Heat", "Type": "DVD", "Year": 1995}]`, i)
	}
	sb.WriteString("}")

	result := ParseDocument([]byte(sb.String()))

	assert.Len(t, result.Shelves, MaxShelves)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "Too many shelves. Max allowed is 200.", result.Errors[0])
}

func TestParseDocument_TooManyProducts(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"Big": [`)
	for i := 0; i <= MaxProductsPerShelf; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"Name": "Item %d", "Type": "DVD", "Year": 1995}`, i)
	}
	sb.WriteString("]}")

	result := ParseDocument([]byte(sb.String()))

	require.Len(t, result.Shelves, 1)
	assert.Len(t, result.Shelves[0].Products, MaxProductsPerShelf)
	assert.Equal(t, []string{`Shelf "Big" has too many products. Max allowed is 1000.`}, result.Errors)
}

func TestParseDocument_TrimsNamesAndTypes(t *testing.T) {
	doc := `{"  Living Room  ": [{"Name": "  Heat  ", "Type": "  DVD  ", "Year": 1995}]}`

	result := ParseDocument([]byte(doc))

	require.Empty(t, result.Errors)
	require.Len(t, result.Shelves, 1)
	assert.Equal(t, "Living Room", result.Shelves[0].Name)
	assert.Equal(t, Product{Name: "Heat", Type: "DVD", Year: 1995}, result.Shelves[0].Products[0])
}
