package store

import (
	"context"
	"fmt"

	"github.com/archivistapp/archivist-server/internal/domain"
)

// SessionByTokenHash finds a session by the stored refresh token hash.
func (s *Store) SessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	return s.Sessions.GetByIndex(ctx, "token", tokenHash)
}

// DeleteSessionsForUser revokes every session belonging to a user.
func (s *Store) DeleteSessionsForUser(ctx context.Context, userID string) error {
	var ids []string
	for session, err := range s.Sessions.ListByIndex(ctx, "user", userID) {
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, session.ID)
	}

	for _, id := range ids {
		if err := s.Sessions.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	return nil
}
