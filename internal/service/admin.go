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

// AdminService implements user administration and the product-type
// vocabulary. Callers must already be authorized as admins.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(st *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{store: st, logger: logger}
}

// UpdateUserStatusRequest changes a user's tier.
type UpdateUserStatusRequest struct {
	Status domain.UserStatus `json:"status" validate:"required,oneof=VIP STANDARD"`
}

// CreateProductTypeRequest adds a vocabulary entry.
type CreateProductTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListUsers returns every account, sorted by email.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		u := *user
		u.PasswordHash = ""
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Email < users[j].Email
	})
	return users, nil
}

// UpdateUserStatus moves a user between VIP and STANDARD. Admin accounts
// cannot be reassigned, and nobody can grant ADMIN this way.
func (s *AdminService) UpdateUserStatus(ctx context.Context, adminID, targetID string, req UpdateUserStatusRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.IsAdmin() {
		return nil, domainerrors.Forbidden("admin accounts cannot be reassigned")
	}

	user.Status = req.Status
	user.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, targetID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user status changed",
		"admin_id", adminID, "user_id", targetID, "status", req.Status)

	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes an account and all its data. Admins cannot delete
// themselves or other admin accounts.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, targetID string) error {
	if targetID == adminID {
		return domainerrors.Forbidden("cannot delete your own account")
	}

	user, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsAdmin() {
		return domainerrors.Forbidden("admin accounts cannot be deleted")
	}

	if err := s.store.DeleteUserCascade(ctx, targetID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "admin_id", adminID, "user_id", targetID)
	return nil
}

// ListProductTypes returns the vocabulary sorted by name.
func (s *AdminService) ListProductTypes(ctx context.Context) ([]domain.ProductType, error) {
	var types []domain.ProductType
	for t, err := range s.store.ProductTypes.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list product types: %w", err)
		}
		types = append(types, *t)
	}

	sort.Slice(types, func(i, j int) bool {
		return domain.MatchKey(types[i].Name) < domain.MatchKey(types[j].Name)
	})
	return types, nil
}

// CreateProductType adds a vocabulary entry. Names are unique
// case-insensitively.
func (s *AdminService) CreateProductType(ctx context.Context, req CreateProductTypeRequest) (*domain.ProductType, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !validation.IsValidProductType(name) {
		return nil, domainerrors.Validationf("type name must be %d-%d characters and start with a letter or digit",
			validation.ProductTypeMin, validation.ProductTypeMax)
	}

	typeID, err := id.Generate("pt")
	if err != nil {
		return nil, fmt.Errorf("generate type ID: %w", err)
	}

	productType := &domain.ProductType{
		ID:        typeID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.ProductTypes.Create(ctx, typeID, productType); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a type with this name already exists")
		}
		return nil, fmt.Errorf("create product type: %w", err)
	}

	s.logger.Info("product type created", "type_id", typeID, "name", name)
	return productType, nil
}

// DeleteProductType retires a vocabulary entry. Existing products keep their
// stored type string; only new assignments are blocked.
func (s *AdminService) DeleteProductType(ctx context.Context, typeID string) error {
	if _, err := s.store.ProductTypes.Get(ctx, typeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("product type not found")
		}
		return fmt.Errorf("lookup product type: %w", err)
	}

	if err := s.store.ProductTypes.Delete(ctx, typeID); err != nil {
		return fmt.Errorf("delete product type: %w", err)
	}

	s.logger.Info("product type deleted", "type_id", typeID)
	return nil
}
