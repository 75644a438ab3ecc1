package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/archivistapp/archivist-server/internal/domain"
)

// ActiveLoanForProduct returns the open loan on a product, or ErrNotFound
// when the product is not lent out.
func (s *Store) ActiveLoanForProduct(ctx context.Context, productID string) (*domain.Loan, error) {
	return s.Loans.GetByIndex(ctx, "active_product", productID)
}

// LoansForUser returns all of a user's loans, most recently lent first.
func (s *Store) LoansForUser(ctx context.Context, userID string) ([]domain.Loan, error) {
	var loans []domain.Loan
	for loan, err := range s.Loans.ListByIndex(ctx, "user", userID) {
		if err != nil {
			return nil, fmt.Errorf("list loans: %w", err)
		}
		loans = append(loans, *loan)
	}

	sort.Slice(loans, func(i, j int) bool {
		return loans[i].LentAt.After(loans[j].LentAt)
	})
	return loans, nil
}
