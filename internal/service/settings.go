package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/archivistapp/archivist-server/internal/auth"
	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
	"github.com/archivistapp/archivist-server/internal/store"
	"github.com/archivistapp/archivist-server/internal/validation"
)

// SettingsService manages account, library, and preference settings.
type SettingsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(st *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: st, logger: logger}
}

// UpdateAccountRequest carries account profile changes.
type UpdateAccountRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateLibraryRequest renames the user's library.
type UpdateLibraryRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdatePreferencesRequest carries presentation preferences.
type UpdatePreferencesRequest struct {
	ShowShelfPulse bool `json:"show_shelf_pulse"`
}

// ChangePasswordRequest carries a password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

// UpdateAccount changes the user's display name and email.
func (s *SettingsService) UpdateAccount(ctx context.Context, userID string, req UpdateAccountRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !validation.IsValidAccountName(name) {
		return nil, domainerrors.Validation("name must be 2-60 characters")
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user.Name = name
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateLibrary renames the user's library.
func (s *SettingsService) UpdateLibrary(ctx context.Context, userID string, req UpdateLibraryRequest) (*domain.Library, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !validation.IsValidShelfName(name) {
		return nil, domainerrors.Validationf("library name must be %d-%d characters and start with a letter or digit",
			validation.ShelfNameMin, validation.ShelfNameMax)
	}

	library, err := s.store.LibraryForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("library not found")
		}
		return nil, fmt.Errorf("lookup library: %w", err)
	}

	library.Name = name
	library.UpdatedAt = time.Now().UTC()

	if err := s.store.Libraries.Update(ctx, library.ID, library); err != nil {
		return nil, fmt.Errorf("update library: %w", err)
	}
	return library, nil
}

// UpdatePreferences stores the user's presentation preferences.
func (s *SettingsService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user.Settings.ShowShelfPulse = req.ShowShelfPulse
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword rotates the user's password after verifying the current
// one, then revokes every session so other devices must log in again.
func (s *SettingsService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.InvalidCredentials("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if err := s.store.DeleteSessionsForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}
