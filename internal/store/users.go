package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/archivistapp/archivist-server/internal/domain"
)

// UserByEmail finds a user by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}

// DeleteUserCascade removes a user along with their library, shelves,
// products, and loans.
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	library, err := s.LibraryForUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if library != nil {
		shelves, err := s.ShelvesForLibrary(ctx, library.ID)
		if err != nil {
			return err
		}
		for _, shelf := range shelves {
			if err := s.DeleteShelfCascade(ctx, shelf.ID); err != nil {
				return err
			}
		}
		if err := s.Libraries.Delete(ctx, library.ID); err != nil {
			return fmt.Errorf("delete library: %w", err)
		}
	}

	// Sweep any loans the product cascade did not reach.
	loans, err := s.LoansForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		if err := s.Loans.Delete(ctx, loan.ID); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
	}

	if err := s.DeleteSessionsForUser(ctx, userID); err != nil {
		return err
	}

	if err := s.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user deleted", "id", userID)
	}
	return nil
}
