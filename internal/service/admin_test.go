package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivistapp/archivist-server/internal/domain"
	domainerrors "github.com/archivistapp/archivist-server/internal/errors"
)

func TestAdminService_ListUsers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.signup(t, "zoe@example.com", "Zoe")
	env.signup(t, "amir@example.com", "Amir")

	users, err := env.admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amir@example.com", users[0].Email)
	assert.Equal(t, "zoe@example.com", users[1].Email)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestAdminService_UpdateUserStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := env.seedAdmin(t, "admin@example.com")
	user := env.signup(t, "mara@example.com", "Mara")

	updated, err := env.admin.UpdateUserStatus(ctx, admin.ID, user.ID, UpdateUserStatusRequest{
		Status: domain.UserStatusVIP,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusVIP, updated.Status)
	assert.Empty(t, updated.PasswordHash)

	// ADMIN cannot be granted through this endpoint.
	_, err = env.admin.UpdateUserStatus(ctx, admin.ID, user.ID, UpdateUserStatusRequest{
		Status: domain.UserStatusAdmin,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// Admin accounts keep their status.
	_, err = env.admin.UpdateUserStatus(ctx, admin.ID, admin.ID, UpdateUserStatusRequest{
		Status: domain.UserStatusStandard,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	_, err = env.admin.UpdateUserStatus(ctx, admin.ID, "usr-missing", UpdateUserStatusRequest{
		Status: domain.UserStatusVIP,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestAdminService_DeleteUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS")
	admin := env.seedAdmin(t, "admin@example.com")
	user := env.signup(t, "mara@example.com", "Mara")

	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
	product, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)
	_, err = env.lending.Lend(ctx, user.ID, product.ID, LendRequest{BorrowerName: "Ben"})
	require.NoError(t, err)

	// Self-deletion and admin targets are refused.
	err = env.admin.DeleteUser(ctx, admin.ID, admin.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	other := env.seedAdmin(t, "root@example.com")
	err = env.admin.DeleteUser(ctx, admin.ID, other.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	require.NoError(t, env.admin.DeleteUser(ctx, admin.ID, user.ID))

	_, err = env.store.Users.Get(ctx, user.ID)
	require.Error(t, err)
	_, err = env.store.Products.Get(ctx, product.ID)
	require.Error(t, err)

	// The email is freed for a fresh signup.
	env.signup(t, "mara@example.com", "Mara Again")
}

func TestAdminService_ProductTypes(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.admin.CreateProductType(ctx, CreateProductTypeRequest{Name: "Blu-ray"})
	require.NoError(t, err)
	assert.Equal(t, "Blu-ray", created.Name)

	_, err = env.admin.CreateProductType(ctx, CreateProductTypeRequest{Name: "blu-RAY"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	_, err = env.admin.CreateProductType(ctx, CreateProductTypeRequest{Name: "'bad"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.admin.CreateProductType(ctx, CreateProductTypeRequest{Name: "VHS"})
	require.NoError(t, err)

	types, err := env.admin.ListProductTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Blu-ray", types[0].Name)
	assert.Equal(t, "VHS", types[1].Name)
}

func TestAdminService_DeleteProductType_Retires(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.seedTypes(t, "VHS", "Vinyl")
	user := env.signup(t, "mara@example.com", "Mara")
	shelf, err := env.library.CreateShelf(ctx, user.ID, CreateShelfRequest{Name: "Living Room"})
	require.NoError(t, err)
	product, err := env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "Blade Runner", Type: "VHS", Year: 1982,
	})
	require.NoError(t, err)

	types, err := env.admin.ListProductTypes(ctx)
	require.NoError(t, err)
	var vhsID string
	for _, pt := range types {
		if pt.Name == "VHS" {
			vhsID = pt.ID
		}
	}
	require.NotEmpty(t, vhsID)

	require.NoError(t, env.admin.DeleteProductType(ctx, vhsID))

	// Existing products keep the retired type string.
	got, err := env.store.Products.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "VHS", got.Type)

	// New assignments are blocked.
	_, err = env.library.CreateProduct(ctx, user.ID, shelf.ID, CreateProductRequest{
		Name: "The Matrix", Type: "VHS", Year: 1999,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	err = env.admin.DeleteProductType(ctx, "pt-missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
