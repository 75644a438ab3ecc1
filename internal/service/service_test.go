package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/archivistapp/archivist-server/internal/auth"
	"github.com/archivistapp/archivist-server/internal/domain"
	"github.com/archivistapp/archivist-server/internal/ratelimit"
	"github.com/archivistapp/archivist-server/internal/store"
)

// testEnv bundles the services over one temporary store.
type testEnv struct {
	store    *store.Store
	tokens   *auth.TokenService
	auth     *AuthService
	library  *LibraryService
	lending  *LendingService
	settings *SettingsService
	admin    *AdminService
	importer *ImportService
}

// setupTestEnv creates the full service stack on a throwaway database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(dir, "db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	keyHex, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	// Generous limiter so only the dedicated rate-limit test trips it.
	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)

	library := NewLibraryService(st, logger)
	return &testEnv{
		store:    st,
		tokens:   tokens,
		auth:     NewAuthService(st, tokens, limiter, logger),
		library:  library,
		lending:  NewLendingService(st, library, logger),
		settings: NewSettingsService(st, logger),
		admin:    NewAdminService(st, logger),
		importer: NewImportService(st, library, 0, logger),
	}
}

const testPassword = "correct-horse-battery"

// signup creates an account through the real signup flow.
func (e *testEnv) signup(t *testing.T, email, name string) *domain.User {
	t.Helper()

	resp, err := e.auth.Signup(context.Background(), SignupRequest{
		Email:    email,
		Password: testPassword,
		Name:     name,
	})
	require.NoError(t, err)
	return resp.User
}

// seedTypes fills the vocabulary through the admin service.
func (e *testEnv) seedTypes(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		_, err := e.admin.CreateProductType(context.Background(), CreateProductTypeRequest{Name: name})
		require.NoError(t, err)
	}
}

// seedAdmin writes an admin account directly; signup never grants ADMIN.
func (e *testEnv) seedAdmin(t *testing.T, email string) *domain.User {
	t.Helper()

	user := e.signup(t, email, "Site Admin")
	user.Status = domain.UserStatusAdmin
	require.NoError(t, e.store.Users.Update(context.Background(), user.ID, user))
	return user
}
