package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Classification(t *testing.T) {
	tests := []struct {
		name      string
		parse     ParseResult
		summary   Summary
		reconcile []string
		want      Status
	}{
		{
			name:    "all changes no errors",
			summary: Summary{ShelvesCreated: 1, ProductsCreated: 2},
			want:    StatusSuccess,
		},
		{
			name:      "changes with errors",
			parse:     ParseResult{Errors: []string{`Shelf "X" item 2 has an invalid Year.`}},
			summary:   Summary{ShelvesMatched: 1, ProductsCreated: 1},
			reconcile: []string{`Product "Y" in shelf "X" could not be created.`},
			want:      StatusPartial,
		},
		{
			name:  "nothing changed with errors",
			parse: ParseResult{Errors: []string{"Invalid JSON: unexpected EOF"}},
			want:  StatusError,
		},
		{
			name:    "nothing changed no errors",
			summary: Summary{ShelvesMatched: 3},
			want:    StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Report(tt.parse, tt.summary, tt.reconcile)
			assert.Equal(t, tt.want, outcome.Status)
			assert.NotEmpty(t, outcome.Message)
		})
	}
}

func TestReport_ErrorOrderPreserved(t *testing.T) {
	parse := ParseResult{Errors: []string{"first", "second"}}
	outcome := Report(parse, Summary{ProductsCreated: 1}, []string{"third"})

	assert.Equal(t, []string{"first", "second", "third"}, outcome.Errors)
}

func TestReport_SuccessOmitsErrors(t *testing.T) {
	outcome := Report(ParseResult{}, Summary{ProductsCreated: 1}, nil)

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Nil(t, outcome.Errors)
}

func TestImporter_Run_EndToEnd(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addShelf("Living Room",
		CatalogProduct{ID: "prd-br", Name: "Blade Runner", Type: "VHS", Year: 1982})
	im := New(catalog, newFakeVocab("VHS", "DVD", "Vinyl"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	doc := `{
		"living room": [
			{"Name": "Blade Runner", "Type": "VHS", "Year": 1982},
			{"Name": "Heat", "Type": "DVD", "Year": 1995}
		],
		"Garage": [
			{"Name": "Kind of Blue", "Type": "Vinyl", "Year": 1959},
			{"Name": "Broken", "Type": "DVD", "Year": "nope"}
		]
	}`

	outcome, err := im.Run(context.Background(), []byte(doc))

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Equal(t, Summary{
		ShelvesCreated:  1,
		ShelvesMatched:  1,
		ProductsCreated: 2,
		ProductsUpdated: 1,
	}, outcome.Summary)
	assert.Equal(t, []string{`Shelf "Garage" item 2 is missing a valid Year.`}, outcome.Errors)

	require.Len(t, catalog.shelves, 2)
	assert.Equal(t, "Garage", catalog.shelves[1].Name)
}

func TestImporter_Run_InvalidDocument(t *testing.T) {
	catalog := newFakeCatalog()
	im := New(catalog, newFakeVocab("DVD"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	outcome, err := im.Run(context.Background(), []byte("{{"))

	require.NoError(t, err)
	assert.Equal(t, StatusError, outcome.Status)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "Invalid JSON:")
	assert.Empty(t, catalog.shelves)
}
