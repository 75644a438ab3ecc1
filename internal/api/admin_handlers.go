package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Lists every account, sorted by email. Admin only.",
		Tags:        []string{"Admin"},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateUserStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/users/{id}/status",
		Summary:     "Update user status",
		Description: "Moves a user between VIP and STANDARD. Admin only.",
		Tags:        []string{"Admin"},
	}, s.handleAdminUpdateUserStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes an account and everything it owns. Admin only.",
		Tags:        []string{"Admin"},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProductTypes",
		Method:      http.MethodGet,
		Path:        "/api/v1/product-types",
		Summary:     "List product types",
		Description: "Returns the product-type vocabulary, sorted by name",
		Tags:        []string{"Admin"},
	}, s.handleListProductTypes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProductType",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/product-types",
		Summary:     "Create product type",
		Description: "Adds a vocabulary entry. Admin only.",
		Tags:        []string{"Admin"},
	}, s.handleCreateProductType)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProductType",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/product-types/{id}",
		Summary:     "Retire product type",
		Description: "Retires a vocabulary entry. Existing products keep their stored type. Admin only.",
		Tags:        []string{"Admin"},
	}, s.handleDeleteProductType)
}

// === DTOs ===

// UsersOutput wraps the user listing for Huma.
type UsersOutput struct {
	Body []UserResponse
}

// UpdateUserStatusRequest changes a user's tier.
type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=VIP STANDARD" doc:"New tier (VIP or STANDARD)"`
}

// UpdateUserStatusInput wraps the status change for Huma.
type UpdateUserStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Body          UpdateUserStatusRequest
}

// UserIDInput addresses one user.
type UserIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// ProductTypesOutput wraps the vocabulary listing for Huma.
type ProductTypesOutput struct {
	Body []domain.ProductType
}

// CreateProductTypeRequest adds a vocabulary entry.
type CreateProductTypeRequest struct {
	Name string `json:"name" validate:"required,max=40" doc:"Type name"`
}

// CreateProductTypeInput wraps the vocabulary addition for Huma.
type CreateProductTypeInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateProductTypeRequest
}

// ProductTypeOutput wraps a single vocabulary entry for Huma.
type ProductTypeOutput struct {
	Body domain.ProductType
}

// ProductTypeIDInput addresses one vocabulary entry.
type ProductTypeIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Product type ID"`
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, input *AuthorizedInput) (*UsersOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, mapUserResponse(&users[i]))
	}
	return &UsersOutput{Body: out}, nil
}

func (s *Server) handleAdminUpdateUserStatus(ctx context.Context, input *UpdateUserStatusInput) (*UserOutput, error) {
	adminID, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.UpdateUserStatus(ctx, adminID, input.ID, service.UpdateUserStatusRequest{
		Status: domain.UserStatus(input.Body.Status),
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	adminID, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, adminID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}

func (s *Server) handleListProductTypes(ctx context.Context, input *AuthorizedInput) (*ProductTypesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	types, err := s.services.Admin.ListProductTypes(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductTypesOutput{Body: types}, nil
}

func (s *Server) handleCreateProductType(ctx context.Context, input *CreateProductTypeInput) (*ProductTypeOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	productType, err := s.services.Admin.CreateProductType(ctx, service.CreateProductTypeRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &ProductTypeOutput{Body: *productType}, nil
}

func (s *Server) handleDeleteProductType(ctx context.Context, input *ProductTypeIDInput) (*MessageOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteProductType(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product type retired"}}, nil
}
