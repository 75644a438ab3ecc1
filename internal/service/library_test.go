package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
)

func TestLibraryService_CreateShelf(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.signup(t, "mara@example.com", "Mara")

	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "  Living Room  "})
	require.NoError(t, err)
	assert.Equal(t, "Living Room", shelf.Name)

	// Names are unique case-insensitively within a library.
	_, err = env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "living room"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	// Another user can reuse the name.
	other := env.signup(t, "other@example.com", "Other")
	_, err = env.library.CreateShelf(ctx, other.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
}

func TestLibraryService_CreateShelf_InvalidName(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.signup(t, "mara@example.com", "Mara")

	for _, name := range []string{"", "   ", "'starts with quote"} {
		_, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: name})
		require.Error(t, err, "name %q", name)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	}
}

func TestLibraryService_CreateProduct(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)

	product, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name:   "Blade Runner",
		Type:   "VHS",
		Year:   1982,
		Artist: "Ridley Scott",
	})
	require.NoError(t, err)
	assert.Equal(t, shelf.ID, product.ShelfID)
	assert.Equal(t, "Blade Runner", product.Name)
	assert.Equal(t, 1982, product.Year)

	// Duplicate name on the same shelf, regardless of case.
	_, err = env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "BLADE RUNNER", Type: "VHS", Year: 1982,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	// Types outside the vocabulary are rejected.
	_, err = env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "Cassette", Year: 1959,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// Vocabulary matching is case-insensitive; the typed casing is stored.
	p2, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "vinyl", Year: 1959,
	})
	require.NoError(t, err)
	assert.Equal(t, "vinyl", p2.Type)
}

func TestLibraryService_CreateProduct_InvalidYear(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)

	for _, year := range []int{1399, 9999} {
		_, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
			Name: "Blade Runner", Type: "VHS", Year: year,
		})
		require.Error(t, err, "year %d", year)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	}
}

func TestLibraryService_UpdateProduct_RetiredType(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)

	product, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)

	types, err := env.admin.ListProductTypes(ctx)
	require.NoError(t, err)
	for _, pt := range types {
		if pt.Name == "VHS" {
			require.NoError(t, env.admin.DeleteProductType(ctx, pt.ID))
		}
	}

	// Keeping the stored retired type is allowed.
	updated, err := env.library.UpdateProduct(ctx, user.ID, product.ID, UpdateProductRequest{
		Name: "Blade Runner (Director's Cut)", Type: "VHS", Year: 1992,
	})
	require.NoError(t, err)
	assert.Equal(t, "VHS", updated.Type)
	assert.Equal(t, 1992, updated.Year)

	// Assigning the retired type to another product is not.
	other, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "Vinyl", Year: 1959,
	})
	require.NoError(t, err)
	_, err = env.library.UpdateProduct(ctx, user.ID, other.ID, UpdateProductRequest{
		Name: "Kind of Blue", Type: "VHS", Year: 1959,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestLibraryService_DeleteShelf_Cascade(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
	product, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)

	require.NoError(t, env.library.DeleteShelf(ctx, user.ID, shelf.ID))

	_, err = env.store.Products.Get(ctx, product.ID)
	require.Error(t, err)

	// The freed name is immediately reusable.
	_, err = env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
}

func TestLibraryService_GetLibrary(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")

	_, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Studio Shelf"})
	require.NoError(t, err)
	living, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)

	_, err = env.library.CreateProduct(ctx, user.ID, living.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "Vinyl", Year: 1959,
	})
	require.NoError(t, err)
	lent, err := env.library.CreateProduct(ctx, user.ID, living.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)
	_, err = env.lending.Lend(ctx, user.ID, lent.ID, LendRequest{BorrowerName: "Ben"})
	require.NoError(t, err)

	view, err := env.library.GetLibrary(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Shelves, 2)

	// Shelves and products come back sorted by name.
	assert.Equal(t, "Living Room", view.Shelves[0].Name)
	assert.Equal(t, "Studio Shelf", view.Shelves[1].Name)
	require.Len(t, view.Shelves[0].Products, 2)
	assert.Equal(t, "Blade Runner", view.Shelves[0].Products[0].Name)
	assert.Equal(t, "Kind of Blue", view.Shelves[0].Products[1].Name)
	assert.Empty(t, view.Shelves[1].Products)

	require.NotNil(t, view.Shelves[0].Products[0].ActiveLoan)
	assert.Equal(t, "Ben", view.Shelves[0].Products[0].ActiveLoan.BorrowerName)
	assert.Nil(t, view.Shelves[0].Products[1].ActiveLoan)
}

func TestLibraryService_Pulse(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")

	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
	_, err = env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Studio Shelf"})
	require.NoError(t, err)

	vhs, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)
	_, err = env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "Vinyl", Year: 1959,
	})
	require.NoError(t, err)
	_, err = env.lending.Lend(ctx, user.ID, vhs.ID, LendRequest{BorrowerName: "Ben"})
	require.NoError(t, err)

	stats, err := env.library.Pulse(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalShelves)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 2, stats.AddedLast7Days)
	assert.Equal(t, "Living Room", stats.MostActiveShelf)
	assert.Equal(t, 2, stats.MostActiveShelfCount)
	assert.Equal(t, map[string]int{"VHS": 1, "Vinyl": 1}, stats.ProductsByType)
	assert.Equal(t, 1, stats.ActiveLoans)
	assert.Equal(t, 0, stats.OverdueLoans)
}

func TestLibraryService_Pulse_MostActiveShelfByTotalCount(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS")
	user := env.signup(t, "mara@example.com", "Mara")

	big, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Big Shelf"})
	require.NoError(t, err)
	small, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Small Shelf"})
	require.NoError(t, err)

	// The fullest shelf wins even when all of its products are old.
	monthAgo := time.Now().UTC().AddDate(0, 0, -30)
	for i := 0; i < 5; i++ {
		product, err := env.library.CreateProduct(ctx, user.ID, big.ID, CreateProductRequest{
			Name: fmt.Sprintf("Tape %d", i+1), Type: "VHS", Year: 1990,
		})
		require.NoError(t, err)

		stored, err := env.store.Products.Get(ctx, product.ID)
		require.NoError(t, err)
		stored.CreatedAt = monthAgo
		require.NoError(t, env.store.Products.Update(ctx, product.ID, stored))
	}

	_, err = env.library.CreateProduct(ctx, user.ID, small.ID, CreateProductRequest{
		Name: "Fresh Tape", Type: "VHS", Year: 1991,
	})
	require.NoError(t, err)

	stats, err := env.library.Pulse(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Big Shelf", stats.MostActiveShelf)
	assert.Equal(t, 5, stats.MostActiveShelfCount)
	assert.Equal(t, 1, stats.AddedLast7Days)
}

func TestLibraryService_OwnershipHidden(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS")
	owner := env.signup(t, "mara@example.com", "Mara")
	intruder := env.signup(t, "other@example.com", "Other")

	shelf, err := env.library.CreateShelf(ctx, owner.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
	product, err := env.library.CreateProduct(ctx, owner.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)

	// Foreign IDs look like missing records.
	err = env.library.DeleteShelf(ctx, intruder.ID, shelf.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = env.library.UpdateProduct(ctx, intruder.ID, product.ID, UpdateProductRequest{
		Name: "Hijacked", Type: "VHS", Year: 2000,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	got, err := env.store.Products.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blade Runner", got.Name)
}

func TestLibraryService_AllowedTypes(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Blu-ray")

	allowed, err := env.library.AllowedTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		domain.MatchKey("VHS"):     {},
		domain.MatchKey("Blu-ray"): {},
	}, allowed)
}
