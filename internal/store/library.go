package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/archivistapp/archivist-server/internal/domain"
)

// LibraryForUser returns the user's library.
func (s *Store) LibraryForUser(ctx context.Context, userID string) (*domain.Library, error) {
	return s.Libraries.GetByIndex(ctx, "user", userID)
}

// ShelvesForLibrary returns all shelves in a library sorted by name.
func (s *Store) ShelvesForLibrary(ctx context.Context, libraryID string) ([]domain.Shelf, error) {
	var shelves []domain.Shelf
	for shelf, err := range s.Shelves.ListByIndex(ctx, "library", libraryID) {
		if err != nil {
			return nil, fmt.Errorf("list shelves: %w", err)
		}
		shelves = append(shelves, *shelf)
	}

	sort.Slice(shelves, func(i, j int) bool {
		return domain.MatchKey(shelves[i].Name) < domain.MatchKey(shelves[j].Name)
	})
	return shelves, nil
}

// ProductsForShelf returns all products on a shelf sorted by name.
func (s *Store) ProductsForShelf(ctx context.Context, shelfID string) ([]domain.Product, error) {
	var products []domain.Product
	for product, err := range s.Products.ListByIndex(ctx, "shelf", shelfID) {
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, *product)
	}

	sort.Slice(products, func(i, j int) bool {
		return domain.MatchKey(products[i].Name) < domain.MatchKey(products[j].Name)
	})
	return products, nil
}

// ShelfByName finds a shelf in a library by normalized name.
func (s *Store) ShelfByName(ctx context.Context, libraryID, name string) (*domain.Shelf, error) {
	return s.Shelves.GetByIndex(ctx, "library_name", scopedName(libraryID, name))
}

// ProductByName finds a product on a shelf by normalized name.
func (s *Store) ProductByName(ctx context.Context, shelfID, name string) (*domain.Product, error) {
	return s.Products.GetByIndex(ctx, "shelf_name", scopedName(shelfID, name))
}

// DeleteShelfCascade removes a shelf together with its products and their
// loans. Each step is idempotent, so a partially applied cascade can be
// retried.
func (s *Store) DeleteShelfCascade(ctx context.Context, shelfID string) error {
	products, err := s.ProductsForShelf(ctx, shelfID)
	if err != nil {
		return err
	}

	for _, product := range products {
		if err := s.DeleteProductCascade(ctx, product.ID); err != nil {
			return err
		}
	}

	if err := s.Shelves.Delete(ctx, shelfID); err != nil {
		return fmt.Errorf("delete shelf: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("shelf deleted", "id", shelfID, "products", len(products))
	}
	return nil
}

// DeleteProductCascade removes a product and any loans recorded against it.
func (s *Store) DeleteProductCascade(ctx context.Context, productID string) error {
	var loanIDs []string
	for loan, err := range s.Loans.List(ctx) {
		if err != nil {
			return fmt.Errorf("list loans: %w", err)
		}
		if loan.ProductID == productID {
			loanIDs = append(loanIDs, loan.ID)
		}
	}

	for _, id := range loanIDs {
		if err := s.Loans.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
	}

	if err := s.Products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
