package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
	"github.com/archivistapp/archivist-server/internal/id"
	"github.com/archivistapp/archivist-server/internal/store"
	"github.com/archivistapp/archivist-server/internal/validation"
)

// LendingService tracks which products are lent to whom.
type LendingService struct {
	store   *store.Store
	library *LibraryService
	logger  *slog.Logger
}

// NewLendingService creates a new lending service.
func NewLendingService(st *store.Store, library *LibraryService, logger *slog.Logger) *LendingService {
	return &LendingService{store: st, library: library, logger: logger}
}

// LendRequest describes a new loan.
type LendRequest struct {
	BorrowerName  string     `json:"borrower_name" validate:"required"`
	BorrowerNotes string     `json:"borrower_notes,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
}

// LoanView is a loan with its product attached for display.
type LoanView struct {
	domain.Loan
	Product *domain.Product `json:"product,omitempty"`
}

// Lend records that a product has been handed to a borrower.
// A product can carry only one active loan.
func (s *LendingService) Lend(ctx context.Context, userID, productID string, req LendRequest) (*domain.Loan, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	borrower := strings.TrimSpace(req.BorrowerName)
	if !validation.IsValidBorrowerName(borrower) {
		return nil, domainerrors.Validationf("borrower name must be %d-%d characters and start with a letter or digit",
			validation.BorrowerNameMin, validation.BorrowerNameMax)
	}

	notes := strings.TrimSpace(req.BorrowerNotes)
	if !validation.IsValidBorrowerNotes(notes) {
		return nil, domainerrors.Validationf("borrower notes must not exceed %d characters", validation.BorrowerNotesMax)
	}

	now := time.Now().UTC()
	if req.DueAt != nil && req.DueAt.Before(now) {
		return nil, domainerrors.Validation("due date must be in the future")
	}

	product, err := s.library.productFor(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	loanID, err := id.Generate("loan")
	if err != nil {
		return nil, fmt.Errorf("generate loan ID: %w", err)
	}

	loan := &domain.Loan{
		ID:            loanID,
		UserID:        userID,
		ProductID:     product.ID,
		BorrowerName:  borrower,
		BorrowerNotes: notes,
		LentAt:        now,
		DueAt:         req.DueAt,
	}
	if err := s.store.Loans.Create(ctx, loanID, loan); err != nil {
		// The unique active-product index rejects a second open loan.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("product is already lent out")
		}
		return nil, fmt.Errorf("create loan: %w", err)
	}

	s.logger.Info("product lent", "loan_id", loanID, "product_id", product.ID)
	return loan, nil
}

// Return closes the active loan on a product.
func (s *LendingService) Return(ctx context.Context, userID, productID string) (*domain.Loan, error) {
	product, err := s.library.productFor(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	loan, err := s.store.ActiveLoanForProduct(ctx, product.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Conflict("product is not lent out")
		}
		return nil, fmt.Errorf("lookup loan: %w", err)
	}

	now := time.Now().UTC()
	loan.ReturnedAt = &now
	if err := s.store.Loans.Update(ctx, loan.ID, loan); err != nil {
		return nil, fmt.Errorf("update loan: %w", err)
	}

	s.logger.Info("product returned", "loan_id", loan.ID, "product_id", product.ID)
	return loan, nil
}

// Loans lists the caller's loans, most urgent first: earliest due date
// ahead of undated loans, newest lent breaking ties. When activeOnly is
// set, returned loans are filtered out.
func (s *LendingService) Loans(ctx context.Context, userID string, activeOnly bool) ([]LoanView, error) {
	loans, err := s.store.LoansForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]LoanView, 0, len(loans))
	for _, loan := range loans {
		if activeOnly && !loan.IsActive() {
			continue
		}

		view := LoanView{Loan: loan}
		product, err := s.store.Products.Get(ctx, loan.ProductID)
		if err == nil {
			view.Product = product
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup product: %w", err)
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		a, b := views[i].Loan, views[j].Loan
		switch {
		case a.DueAt != nil && b.DueAt != nil && !a.DueAt.Equal(*b.DueAt):
			return a.DueAt.Before(*b.DueAt)
		case (a.DueAt != nil) != (b.DueAt != nil):
			return a.DueAt != nil
		default:
			return a.LentAt.After(b.LentAt)
		}
	})
	return views, nil
}
