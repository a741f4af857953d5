package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(&models.User{}), "failed to migrate test database")

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	u := &models.User{
		Username: "contractor",
		Name:     "Ada Contractor",
		Email:    "ada@example.gov",
		Role:     permission.RoleContractor,
	}
	require.NoError(t, Create(context.Background(), db, u))

	return u
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Get(ctx, nil, 1)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Get(ctx, db, 42)
	require.ErrorIs(t, err, ErrUserNotFound)

	u := seedUser(t, db)

	got, err := Get(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "contractor", got.Username)
	assert.Equal(t, models.UserStatusActive, got.Status)
	assert.True(t, got.IsActive())

	got, err = GetByUsername(ctx, db, "contractor")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = GetByUsername(ctx, db, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdatePermissions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	u := seedUser(t, db)

	updated, err := UpdatePermissions(ctx, db, u.ID, permission.Overlay{
		permission.EditProject: true,
		permission.ViewProject: false,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Permissions, 2)

	reloaded, err := Get(ctx, db, u.ID)
	require.NoError(t, err)

	granted, set := reloaded.Permissions.Lookup(permission.EditProject)
	assert.True(t, set)
	assert.True(t, granted)

	granted, set = reloaded.Permissions.Lookup(permission.ViewProject)
	assert.True(t, set)
	assert.False(t, granted)

	_, set = reloaded.Permissions.Lookup(permission.CreateAward)
	assert.False(t, set)
}

func TestUpdatePermissionsRejectsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	u := seedUser(t, db)

	_, err := UpdatePermissions(ctx, db, u.ID, permission.Overlay{permission.EditProject: true})
	require.NoError(t, err)

	_, err = UpdatePermissions(ctx, db, u.ID, permission.Overlay{"drop_tables": true})

	var vErr *permission.ValidationError
	require.ErrorAs(t, err, &vErr)

	reloaded, err := Get(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, permission.Overlay{permission.EditProject: true}, reloaded.Permissions)
}

func TestUpdatePermissionsUnknownUser(t *testing.T) {
	_, err := UpdatePermissions(context.Background(), setupTestDB(t), 99, permission.Overlay{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	u := &models.User{
		Username:           "admin",
		Email:              "admin@example.gov",
		Role:               permission.RoleSuperAdmin,
		Password:           models.HashPassword("changeme"),
		MustChangePassword: true,
	}
	require.NoError(t, Create(ctx, db, u))

	require.NoError(t, ChangePassword(ctx, db, u.ID, models.HashPassword("n3w-Secret!")))

	reloaded, err := Get(ctx, db, u.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.MustChangePassword)
	assert.True(t, reloaded.VerifyPassword("n3w-Secret!"))
	assert.False(t, reloaded.VerifyPassword("changeme"))

	require.ErrorIs(t, ChangePassword(ctx, db, 999, "x"), ErrUserNotFound)
}
