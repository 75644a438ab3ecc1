package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/service"
)

func (s *Server) registerLendingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lendProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/products/{id}/lend",
		Summary:     "Lend product",
		Description: "Records that a product has been handed to a borrower. A product carries at most one active loan.",
		Tags:        []string{"Lending"},
	}, s.handleLend)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/products/{id}/return",
		Summary:     "Return product",
		Description: "Closes the active loan on a product",
		Tags:        []string{"Lending"},
	}, s.handleReturn)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans",
		Summary:     "List loans",
		Description: "Lists the caller's loans newest first, optionally only active ones",
		Tags:        []string{"Lending"},
	}, s.handleListLoans)
}

// === DTOs ===

// LendRequest is the request body for lending a product.
type LendRequest struct {
	BorrowerName  string     `json:"borrower_name" validate:"required,max=60" doc:"Borrower name"`
	BorrowerNotes string     `json:"borrower_notes,omitempty" validate:"omitempty,max=500" doc:"Free-form notes"`
	DueAt         *time.Time `json:"due_at,omitempty" doc:"Optional due date, must be in the future"`
}

// LendInput wraps the lend request for Huma.
type LendInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
	Body          LendRequest
}

// LoanOutput wraps a single loan for Huma.
type LoanOutput struct {
	Body domain.Loan
}

// ListLoansInput filters the loan listing.
type ListLoansInput struct {
	Authorization string `header:"Authorization"`
	Active        bool   `query:"active" doc:"Only include loans that have not been returned"`
}

// LoansOutput wraps the loan listing for Huma.
type LoansOutput struct {
	Body []service.LoanView
}

// === Handlers ===

func (s *Server) handleLend(ctx context.Context, input *LendInput) (*LoanOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Lending.Lend(ctx, userID, input.ID, service.LendRequest{
		BorrowerName:  input.Body.BorrowerName,
		BorrowerNotes: input.Body.BorrowerNotes,
		DueAt:         input.Body.DueAt,
	})
	if err != nil {
		return nil, err
	}

	return &LoanOutput{Body: *loan}, nil
}

func (s *Server) handleReturn(ctx context.Context, input *ProductIDInput) (*LoanOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	loan, err := s.services.Lending.Return(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &LoanOutput{Body: *loan}, nil
}

func (s *Server) handleListLoans(ctx context.Context, input *ListLoansInput) (*LoansOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	loans, err := s.services.Lending.Loans(ctx, userID, input.Active)
	if err != nil {
		return nil, err
	}

	return &LoansOutput{Body: loans}, nil
}
