package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/service"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "updateAccount",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/account",
		Summary:     "Update account",
		Description: "Changes the caller's display name and email",
		Tags:        []string{"Settings"},
	}, s.handleUpdateAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLibrarySettings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/library",
		Summary:     "Rename library",
		Tags:        []string{"Settings"},
	}, s.handleUpdateLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/preferences",
		Summary:     "Update preferences",
		Tags:        []string{"Settings"},
	}, s.handleUpdatePreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "changePassword",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/password",
		Summary:     "Change password",
		Description: "Rotates the password and revokes every session",
		Tags:        []string{"Settings"},
	}, s.handleChangePassword)
}

// === DTOs ===

// UpdateAccountRequest carries account profile changes.
type UpdateAccountRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=60" doc:"Display name"`
	Email string `json:"email" validate:"required,email,max=254" doc:"Email address"`
}

// UpdateAccountInput wraps the account update for Huma.
type UpdateAccountInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateAccountRequest
}

// UpdateLibraryRequest renames the caller's library.
type UpdateLibraryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=60" doc:"Library name"`
}

// UpdateLibraryInput wraps the library rename for Huma.
type UpdateLibraryInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateLibraryRequest
}

// LibrarySettingsOutput wraps the library record for Huma.
type LibrarySettingsOutput struct {
	Body domain.Library
}

// UpdatePreferencesRequest carries presentation preferences.
type UpdatePreferencesRequest struct {
	ShowShelfPulse bool `json:"show_shelf_pulse" doc:"Toggle the activity summary card"`
}

// UpdatePreferencesInput wraps the preferences update for Huma.
type UpdatePreferencesInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdatePreferencesRequest
}

// ChangePasswordRequest carries a password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" doc:"Current password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024" doc:"New password"`
}

// ChangePasswordInput wraps the password change for Huma.
type ChangePasswordInput struct {
	Authorization string `header:"Authorization"`
	Body          ChangePasswordRequest
}

// === Handlers ===

func (s *Server) handleUpdateAccount(ctx context.Context, input *UpdateAccountInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Settings.UpdateAccount(ctx, userID, service.UpdateAccountRequest{
		Name:  input.Body.Name,
		Email: input.Body.Email,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateLibrary(ctx context.Context, input *UpdateLibraryInput) (*LibrarySettingsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	library, err := s.services.Settings.UpdateLibrary(ctx, userID, service.UpdateLibraryRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &LibrarySettingsOutput{Body: *library}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Settings.UpdatePreferences(ctx, userID, service.UpdatePreferencesRequest{
		ShowShelfPulse: input.Body.ShowShelfPulse,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleChangePassword(ctx context.Context, input *ChangePasswordInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	err = s.services.Settings.ChangePassword(ctx, userID, service.ChangePasswordRequest{
		CurrentPassword: input.Body.CurrentPassword,
		NewPassword:     input.Body.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password changed"}}, nil
}
