package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
)

// lendingFixture seeds a user with one shelf and two products.
func lendingFixture(t *testing.T, env *testEnv) (*domain.User, *domain.Product, *domain.Product) {
	t.Helper()
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)

	movie, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)
	record, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Kind of Blue", Type: "Vinyl", Year: 1959,
	})
	require.NoError(t, err)

	return user, movie, record
}

func TestLendingService_Lend(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user, movie, _ := lendingFixture(t, env)

	due := time.Now().Add(14 * 24 * time.Hour)
	loan, err := env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{
		BorrowerName:  "  Ben  ",
		BorrowerNotes: "return before the move",
		DueAt:         &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ben", loan.BorrowerName)
	assert.Equal(t, movie.ID, loan.ProductID)
	assert.True(t, loan.IsActive())
	require.NotNil(t, loan.DueAt)

	// One active loan per product.
	_, err = env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "Alice"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestLendingService_Lend_Invalid(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user, movie, _ := lendingFixture(t, env)

	past := time.Now().Add(-time.Hour)
	_, err := env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "Ben", DueAt: &past})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "   "})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.lending.Lend(ctx, user.ID, "prd-missing", LendRequest{BorrowerName: "Ben"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestLendingService_ReturnAndRelend(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user, movie, _ := lendingFixture(t, env)

	_, err := env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "Ben"})
	require.NoError(t, err)

	returned, err := env.lending.Return(ctx, user.ID, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)
	assert.False(t, returned.IsActive())

	// Returning twice fails.
	_, err = env.lending.Return(ctx, user.ID, movie.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// A returned product can be lent again.
	_, err = env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "Alice"})
	require.NoError(t, err)
}

func TestLendingService_Loans(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user, movie, record := lendingFixture(t, env)

	_, err := env.lending.Lend(ctx, user.ID, movie.ID, LendRequest{BorrowerName: "Ben"})
	require.NoError(t, err)
	_, err = env.lending.Return(ctx, user.ID, movie.ID)
	require.NoError(t, err)
	_, err = env.lending.Lend(ctx, user.ID, record.ID, LendRequest{BorrowerName: "Alice"})
	require.NoError(t, err)

	all, err := env.lending.Loans(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, view := range all {
		require.NotNil(t, view.Product)
	}

	active, err := env.lending.Loans(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Alice", active[0].BorrowerName)
	assert.Equal(t, record.ID, active[0].ProductID)
	assert.Equal(t, "Kind of Blue", active[0].Product.Name)
}
