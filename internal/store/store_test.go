package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/store"
)

func seedUser(t *testing.T, s *store.Store, id, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:     id,
		Email:  email,
		Name:   "Test User",
		Status: domain.UserStatusStandard,
	}
	require.NoError(t, s.Users.Create(context.Background(), id, user))
	return user
}

func seedLibrary(t *testing.T, s *store.Store, id, userID string) *domain.Library {
	t.Helper()
	library := &domain.Library{ID: id, UserID: userID, Name: "Test Library"}
	require.NoError(t, s.Libraries.Create(context.Background(), id, library))
	return library
}

func seedShelf(t *testing.T, s *store.Store, id, libraryID, name string) *domain.Shelf {
	t.Helper()
	shelf := &domain.Shelf{ID: id, LibraryID: libraryID, Name: name}
	require.NoError(t, s.Shelves.Create(context.Background(), id, shelf))
	return shelf
}

func seedProduct(t *testing.T, s *store.Store, id, shelfID, name string) *domain.Product {
	t.Helper()
	product := &domain.Product{ID: id, ShelfID: shelfID, Name: name, Type: "DVD", Year: 1995}
	require.NoError(t, s.Products.Create(context.Background(), id, product))
	return product
}

func TestStore_UserEmailUniqueCaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	seedUser(t, s, "usr-1", "alice@example.com")

	err := s.Users.Create(context.Background(), "usr-2", &domain.User{
		ID:    "usr-2",
		Email: "ALICE@example.com",
		Name:  "Other",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	found, err := s.UserByEmail(context.Background(), "Alice@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "usr-1", found.ID)
}

func TestStore_OneLibraryPerUser(t *testing.T) {
	s := setupTestStore(t)
	seedUser(t, s, "usr-1", "alice@example.com")
	seedLibrary(t, s, "lib-1", "usr-1")

	err := s.Libraries.Create(context.Background(), "lib-2", &domain.Library{
		ID: "lib-2", UserID: "usr-1", Name: "Second",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	library, err := s.LibraryForUser(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Equal(t, "lib-1", library.ID)
}

func TestStore_ShelfNamesUniquePerLibrary(t *testing.T) {
	s := setupTestStore(t)
	seedLibrary(t, s, "lib-1", "usr-1")
	seedLibrary(t, s, "lib-2", "usr-2")
	seedShelf(t, s, "shf-1", "lib-1", "Living Room")

	// Same name, same library: rejected case-insensitively.
	err := s.Shelves.Create(context.Background(), "shf-2", &domain.Shelf{
		ID: "shf-2", LibraryID: "lib-1", Name: "LIVING ROOM",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Same name in a different library is fine.
	require.NoError(t, s.Shelves.Create(context.Background(), "shf-3", &domain.Shelf{
		ID: "shf-3", LibraryID: "lib-2", Name: "Living Room",
	}))

	found, err := s.ShelfByName(context.Background(), "lib-1", "living room")
	require.NoError(t, err)
	require.Equal(t, "shf-1", found.ID)
}

func TestStore_ProductNamesUniquePerShelf(t *testing.T) {
	s := setupTestStore(t)
	seedShelf(t, s, "shf-1", "lib-1", "Living Room")
	seedShelf(t, s, "shf-2", "lib-1", "Garage")
	seedProduct(t, s, "prd-1", "shf-1", "Heat")

	err := s.Products.Create(context.Background(), "prd-2", &domain.Product{
		ID: "prd-2", ShelfID: "shf-1", Name: "HEAT", Type: "DVD", Year: 1995,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Products.Create(context.Background(), "prd-3", &domain.Product{
		ID: "prd-3", ShelfID: "shf-2", Name: "Heat", Type: "DVD", Year: 1995,
	}))

	found, err := s.ProductByName(context.Background(), "shf-1", "heat")
	require.NoError(t, err)
	require.Equal(t, "prd-1", found.ID)
}

func TestStore_ShelvesAndProductsSortedByName(t *testing.T) {
	s := setupTestStore(t)
	seedLibrary(t, s, "lib-1", "usr-1")
	seedShelf(t, s, "shf-1", "lib-1", "garage")
	seedShelf(t, s, "shf-2", "lib-1", "Attic")
	seedProduct(t, s, "prd-1", "shf-1", "Ronin")
	seedProduct(t, s, "prd-2", "shf-1", "collateral")

	shelves, err := s.ShelvesForLibrary(context.Background(), "lib-1")
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	require.Equal(t, "Attic", shelves[0].Name)
	require.Equal(t, "garage", shelves[1].Name)

	products, err := s.ProductsForShelf(context.Background(), "shf-1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "collateral", products[0].Name)
	require.Equal(t, "Ronin", products[1].Name)
}

func TestStore_OneActiveLoanPerProduct(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()

	loan := &domain.Loan{
		ID:           "loan-1",
		UserID:       "usr-1",
		ProductID:    "prd-1",
		BorrowerName: "Sam",
		LentAt:       now,
	}
	require.NoError(t, s.Loans.Create(context.Background(), "loan-1", loan))

	err := s.Loans.Create(context.Background(), "loan-2", &domain.Loan{
		ID: "loan-2", UserID: "usr-1", ProductID: "prd-1", BorrowerName: "Pat", LentAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	active, err := s.ActiveLoanForProduct(context.Background(), "prd-1")
	require.NoError(t, err)
	require.Equal(t, "loan-1", active.ID)

	// Returning the loan frees the product for the next loan.
	returned := now.Add(time.Hour)
	loan.ReturnedAt = &returned
	require.NoError(t, s.Loans.Update(context.Background(), "loan-1", loan))

	_, err = s.ActiveLoanForProduct(context.Background(), "prd-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Loans.Create(context.Background(), "loan-2", &domain.Loan{
		ID: "loan-2", UserID: "usr-1", ProductID: "prd-1", BorrowerName: "Pat", LentAt: now.Add(2 * time.Hour),
	}))
}

func TestStore_LoansForUserNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	base := time.Now().UTC()

	returned := base.Add(time.Minute)
	require.NoError(t, s.Loans.Create(context.Background(), "loan-1", &domain.Loan{
		ID: "loan-1", UserID: "usr-1", ProductID: "prd-1", BorrowerName: "Sam",
		LentAt: base, ReturnedAt: &returned,
	}))
	require.NoError(t, s.Loans.Create(context.Background(), "loan-2", &domain.Loan{
		ID: "loan-2", UserID: "usr-1", ProductID: "prd-2", BorrowerName: "Pat",
		LentAt: base.Add(time.Hour),
	}))

	loans, err := s.LoansForUser(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	require.Equal(t, "loan-2", loans[0].ID)
	require.Equal(t, "loan-1", loans[1].ID)
}

func TestStore_ProductTypeNamesUnique(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.ProductTypes.Create(context.Background(), "pt-1", &domain.ProductType{
		ID: "pt-1", Name: "Vinyl",
	}))

	err := s.ProductTypes.Create(context.Background(), "pt-2", &domain.ProductType{
		ID: "pt-2", Name: "vinyl",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestStore_DeleteShelfCascade(t *testing.T) {
	s := setupTestStore(t)
	seedLibrary(t, s, "lib-1", "usr-1")
	seedShelf(t, s, "shf-1", "lib-1", "Living Room")
	seedProduct(t, s, "prd-1", "shf-1", "Heat")
	seedProduct(t, s, "prd-2", "shf-1", "Ronin")

	require.NoError(t, s.Loans.Create(context.Background(), "loan-1", &domain.Loan{
		ID: "loan-1", UserID: "usr-1", ProductID: "prd-1", BorrowerName: "Sam", LentAt: time.Now(),
	}))

	require.NoError(t, s.DeleteShelfCascade(context.Background(), "shf-1"))

	_, err := s.Shelves.Get(context.Background(), "shf-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Products.Get(context.Background(), "prd-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Loans.Get(context.Background(), "loan-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The name is reusable afterwards.
	seedShelf(t, s, "shf-2", "lib-1", "Living Room")
}

func TestStore_DeleteUserCascade(t *testing.T) {
	s := setupTestStore(t)
	seedUser(t, s, "usr-1", "alice@example.com")
	seedLibrary(t, s, "lib-1", "usr-1")
	seedShelf(t, s, "shf-1", "lib-1", "Living Room")
	seedProduct(t, s, "prd-1", "shf-1", "Heat")

	require.NoError(t, s.DeleteUserCascade(context.Background(), "usr-1"))

	_, err := s.Users.Get(context.Background(), "usr-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.LibraryForUser(context.Background(), "usr-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Products.Get(context.Background(), "prd-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The email is reusable afterwards.
	seedUser(t, s, "usr-2", "alice@example.com")
}
