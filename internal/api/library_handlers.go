package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "Get library",
		Description: "Returns the caller's full catalog tree with active loans attached",
		Tags:        []string{"Library"},
	}, s.handleGetLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryPulse",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/pulse",
		Summary:     "Library pulse",
		Description: "Returns catalog and lending activity counters",
		Tags:        []string{"Library"},
	}, s.handleGetPulse)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/shelves",
		Summary:     "Create shelf",
		Tags:        []string{"Library"},
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShelf",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/shelves/{id}",
		Summary:     "Delete shelf",
		Description: "Deletes a shelf together with its products and their loan history",
		Tags:        []string{"Library"},
	}, s.handleDeleteShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/shelves/{id}/products",
		Summary:     "Add product",
		Tags:        []string{"Library"},
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPut,
		Path:        "/api/v1/library/products/{id}",
		Summary:     "Update product",
		Tags:        []string{"Library"},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProduct",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/products/{id}",
		Summary:     "Delete product",
		Tags:        []string{"Library"},
	}, s.handleDeleteProduct)
}

// === DTOs ===

// LibraryOutput wraps the catalog tree for Huma.
type LibraryOutput struct {
	Body service.LibraryView
}

// PulseOutput wraps the pulse counters for Huma.
type PulseOutput struct {
	Body service.PulseStats
}

// CreateShelfRequest names a new shelf.
type CreateShelfRequest struct {
	Name string `json:"name" validate:"required,max=60" doc:"Shelf name"`
}

// CreateShelfInput wraps the shelf creation request for Huma.
type CreateShelfInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateShelfRequest
}

// ShelfOutput wraps a single shelf for Huma.
type ShelfOutput struct {
	Body domain.Shelf
}

// ShelfIDInput addresses one shelf.
type ShelfIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
}

// ProductRequest describes product fields for create and update.
type ProductRequest struct {
	Name   string `json:"name" validate:"required,max=120" doc:"Product name"`
	Type   string `json:"type" validate:"required,max=40" doc:"Product type from the vocabulary"`
	Year   int    `json:"year" validate:"required" doc:"Release year"`
	Artist string `json:"artist,omitempty" validate:"omitempty,max=120" doc:"Artist or creator"`
}

// CreateProductInput wraps the product creation request for Huma.
type CreateProductInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Shelf ID"`
	Body          ProductRequest
}

// UpdateProductInput wraps the product update request for Huma.
type UpdateProductInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
	Body          ProductRequest
}

// ProductIDInput addresses one product.
type ProductIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product ID"`
}

// ProductOutput wraps a single product for Huma.
type ProductOutput struct {
	Body domain.Product
}

// === Handlers ===

func (s *Server) handleGetLibrary(ctx context.Context, input *AuthorizedInput) (*LibraryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Library.GetLibrary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LibraryOutput{Body: *view}, nil
}

func (s *Server) handleGetPulse(ctx context.Context, input *AuthorizedInput) (*PulseOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Library.Pulse(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PulseOutput{Body: *stats}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*ShelfOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Library.CreateShelf(ctx, userID, service.CreateShelfRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: *shelf}, nil
}

func (s *Server) handleDeleteShelf(ctx context.Context, input *ShelfIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.DeleteShelf(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Shelf deleted"}}, nil
}

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	product, err := s.services.Library.CreateProduct(ctx, userID, input.ID, service.CreateProductRequest{
		Name:   input.Body.Name,
		Type:   input.Body.Type,
		Year:   input.Body.Year,
		Artist: input.Body.Artist,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	product, err := s.services.Library.UpdateProduct(ctx, userID, input.ID, service.UpdateProductRequest{
		Name:   input.Body.Name,
		Type:   input.Body.Type,
		Year:   input.Body.Year,
		Artist: input.Body.Artist,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: *product}, nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, input *ProductIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.DeleteProduct(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product deleted"}}, nil
}
