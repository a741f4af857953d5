package roletemplate

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

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.RoleTemplate{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Get(ctx, nil, "Contractor")
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Get(ctx, db, "Contractor")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = Upsert(ctx, db, "Contractor", permission.Grants{permission.ViewProject: true}, "bidder")
	require.NoError(t, err)

	tmpl, err := Get(ctx, db, "Contractor")
	require.NoError(t, err)
	assert.Equal(t, "Contractor", tmpl.Role)
	assert.Equal(t, "bidder", tmpl.Description)
	assert.True(t, tmpl.Permissions.Granted(permission.ViewProject))
}

func TestGetOrEmptyFailsClosed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	tmpl, exists, err := GetOrEmpty(ctx, db, "NewRole")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "NewRole", tmpl.Role)
	assert.Empty(t, tmpl.Permissions.Keys())
}

func TestUpsertReplacesWholeMap(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Upsert(ctx, db, "Contractor", permission.Grants{
		permission.ViewProject: true,
		permission.CreateAward: true,
	}, "first")
	require.NoError(t, err)

	tmpl, err := Upsert(ctx, db, "Contractor", permission.Grants{
		permission.ViewProject: true,
		permission.EditProject: false,
	}, "second")
	require.NoError(t, err)

	assert.Equal(t, "second", tmpl.Description)
	assert.False(t, tmpl.Permissions.Granted(permission.CreateAward))
	assert.True(t, tmpl.Permissions.Granted(permission.ViewProject))

	list, err := List(ctx, db)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertRejectsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Upsert(ctx, db, "Contractor", permission.Grants{permission.ViewProject: true}, "")
	require.NoError(t, err)

	_, err = Upsert(ctx, db, "Contractor", permission.Grants{
		permission.ViewProject: false,
		"launch_rocket":        true,
	}, "")

	var vErr *permission.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []permission.Key{"launch_rocket"}, vErr.Unknown)

	// previous template is untouched
	tmpl, err := Get(ctx, db, "Contractor")
	require.NoError(t, err)
	assert.True(t, tmpl.Permissions.Granted(permission.ViewProject))
}

func TestUpsertValidatesRole(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	testCases := []struct {
		name    string
		role    string
		wantErr bool
	}{
		{name: "empty", role: "", wantErr: true},
		{name: "blank", role: "   ", wantErr: true},
		{name: "too long", role: string(make([]byte, MaxRoleLength+1)), wantErr: true},
		{name: "trimmed", role: "  Auditor ", wantErr: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl, err := Upsert(ctx, db, tc.role, permission.Grants{}, "")
			if tc.wantErr {
				var vErr *permission.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "role", vErr.Field)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Auditor", tmpl.Role)
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.ErrorIs(t, Delete(ctx, db, "Contractor"), ErrTemplateNotFound)

	_, err := Upsert(ctx, db, "Contractor", permission.NewGrants(permission.ViewProject), "")
	require.NoError(t, err)

	require.NoError(t, Delete(ctx, db, "Contractor"))

	_, exists, err := GetOrEmpty(ctx, db, "Contractor")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := Count(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRoleIsNormalizedOnEveryOperation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Upsert(ctx, db, " Contractor ", permission.NewGrants(permission.ViewProject), "")
	require.NoError(t, err)

	tmpl, err := Get(ctx, db, "Contractor\t")
	require.NoError(t, err)
	assert.Equal(t, "Contractor", tmpl.Role)

	tmpl, exists, err := GetOrEmpty(ctx, db, "  Contractor")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Contractor", tmpl.Role)

	_, exists, err = GetOrEmpty(ctx, db, " Inspector ")
	require.NoError(t, err)
	assert.False(t, exists)

	var verr *permission.ValidationError
	_, _, err = GetOrEmpty(ctx, db, "   ")
	require.ErrorAs(t, err, &verr)
	require.ErrorAs(t, Delete(ctx, db, ""), &verr)

	require.NoError(t, Delete(ctx, db, " Contractor "))

	_, err = Get(ctx, db, "Contractor")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}
