package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/daemon"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
	websess "github.com/govfinance-admin/govfinance-admin/internal/web/session"
)

type testEnv struct {
	t   *testing.T
	svc *web.Service
	db  *gorm.DB
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title: "GovFinance Admin",
		DB:    config.DB{GormEngine: config.EngineSQLite, Path: ":memory:"},
		Webserver: config.Webserver{
			URL:          "http://localhost",
			Port:         3000,
			ShutDownTime: 1,
			Session:      config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			IdentityHeader: "X-User-Id",
			LoginPath:      "/login",
			LandingPath:    "/dashboard",
			PasswordPath:   "/password",
			AdminUsername:  "admin",
			AdminEmail:     "admin@example.gov",
		},
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := newTestConfig()

	require.NoError(t, daemon.Migrate(db))
	require.NoError(t, daemon.Seed(context.Background(), cfg, db))

	websess.Init(nil, time.Minute)

	svc, err := web.New(cfg, db)
	require.NoError(t, err)

	return &testEnv{t: t, svc: svc, db: db}
}

func (e *testEnv) createUser(username, role string, mutate func(*models.User)) *models.User {
	e.t.Helper()

	u := &models.User{
		Username: username,
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Email:    username + "@example.gov",
		Password: models.HashPassword("correct horse"),
		Role:     role,
	}

	if mutate != nil {
		mutate(u)
	}

	require.NoError(e.t, user.Create(context.Background(), e.db, u))

	return u
}

func (e *testEnv) sessionFor(u *models.User) string {
	e.t.Helper()

	id, err := websess.GenerateSessionID()
	require.NoError(e.t, err)

	data := websess.Data{UserID: u.ID, Username: u.Username, LoginAt: time.Now()}
	require.NoError(e.t, data.Write(id, time.Minute))

	return id
}

func (e *testEnv) api(method, target string, userID uint64, body string) (*http.Response, []byte) {
	e.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	if userID > 0 {
		req.Header.Set("X-User-Id", strconv.FormatUint(userID, 10))
	}

	return e.do(req)
}

func (e *testEnv) page(method, target, sessionID string, form url.Values) (*http.Response, []byte) {
	e.t.Helper()

	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, reader)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: websess.CookieName, Value: sessionID})
	}

	return e.do(req)
}

// follow requests target and follows redirects like a browser, dropping the
// session cookie once a response expires it. It returns the visited paths.
func (e *testEnv) follow(target, sessionID string) ([]string, *http.Response, []byte) {
	e.t.Helper()

	const maxHops = 5

	visited := []string{target}

	for i := 0; i < maxHops; i++ {
		resp, b := e.page(http.MethodGet, target, sessionID, nil)

		for _, c := range resp.Cookies() {
			if c.Name == websess.CookieName && c.Value == "" {
				sessionID = ""
			}
		}

		if resp.StatusCode != http.StatusFound {
			return visited, resp, b
		}

		target = resp.Header.Get("Location")
		visited = append(visited, target)
	}

	e.t.Fatalf("redirect loop: %v", visited)

	return nil, nil, nil
}

func (e *testEnv) do(req *http.Request) (*http.Response, []byte) {
	e.t.Helper()

	resp, err := e.svc.App.Test(req, -1)
	require.NoError(e.t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	return resp, b
}

func decodeFailure(t *testing.T, b []byte) response.Failure {
	t.Helper()

	var f response.Failure
	require.NoError(t, json.Unmarshal(b, &f))
	assert.False(t, f.OK)

	return f
}

func TestCheckAlive(t *testing.T) {
	env := setup(t)

	resp, b := env.api(http.MethodGet, web.CheckAlivePath, 0, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(b))
}

func TestAPIWithoutIdentityIsUnauthorized(t *testing.T) {
	env := setup(t)

	for _, target := range []string{
		"/api/permissions",
		"/api/me",
		"/api/role-permissions",
		"/api/users/1/permissions",
		"/api/audit-logs",
	} {
		t.Run(target, func(t *testing.T) {
			resp, b := env.api(http.MethodGet, target, 0, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, response.CodeUnauthorized, decodeFailure(t, b).Error)
		})
	}
}

func TestAdminWithoutManagePermissionsCannotUpsert(t *testing.T) {
	env := setup(t)
	admin := env.createUser("alice", permission.RoleAdmin, nil)

	before, err := roletemplate.Get(context.Background(), env.db, permission.RoleContractor)
	require.NoError(t, err)

	resp, b := env.api(http.MethodPost, "/api/role-permissions", admin.ID,
		`{"role":"Contractor","permissions":{"view_project":true,"edit_project":true}}`)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	failure := decodeFailure(t, b)
	assert.Equal(t, response.CodeForbidden, failure.Error)
	assert.Equal(t, []string{string(permission.ManagePermissions)}, failure.RequiredPermissions)

	after, err := roletemplate.Get(context.Background(), env.db, permission.RoleContractor)
	require.NoError(t, err)
	assert.Equal(t, before.Permissions, after.Permissions)

	// reading is still allowed through view_permissions
	resp, _ = env.api(http.MethodGet, "/api/role-permissions", admin.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoleTemplateUpsertAndMissingRole(t *testing.T) {
	env := setup(t)
	root := env.createUser("root", permission.RoleSuperAdmin, nil)

	resp, b := env.api(http.MethodGet, "/api/role-permissions/Inspector", root.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var missing struct {
		Data struct {
			Role        string            `json:"role"`
			Permissions permission.Grants `json:"permissions"`
			Exists      bool              `json:"exists"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &missing))
	assert.Equal(t, "Inspector", missing.Data.Role)
	assert.Empty(t, missing.Data.Permissions)
	assert.False(t, missing.Data.Exists)

	resp, _ = env.api(http.MethodPut, "/api/role-permissions/Inspector", root.ID,
		`{"permissions":["view_project","view_audit"],"description":"Field inspector"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tmpl, err := roletemplate.Get(context.Background(), env.db, "Inspector")
	require.NoError(t, err)
	assert.Equal(t, permission.NewGrants(permission.ViewProject, permission.ViewAudit), tmpl.Permissions)

	logs, err := audit.List(context.Background(), env.db, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, logs.Total)
	assert.Equal(t, audit.ActionUpsertRoleTemplate, logs.Entries[0].Action)
	assert.Equal(t, root.ID, logs.Entries[0].UserID)
}

func TestRoleTemplateRoutesNormalizeRole(t *testing.T) {
	env := setup(t)
	root := env.createUser("root", permission.RoleSuperAdmin, nil)

	resp, _ := env.api(http.MethodPost, "/api/role-permissions", root.ID,
		`{"role":" Field Inspector ","permissions":["view_project"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.api(http.MethodPost, "/api/role-permissions", root.ID,
		`{"role":"Field Inspector","permissions":["view_project","view_audit"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, b := env.api(http.MethodGet, "/api/role-permissions/%20Field%20Inspector%20", root.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Data struct {
			Role   string `json:"role"`
			Exists bool   `json:"exists"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Field Inspector", got.Data.Role)
	assert.True(t, got.Data.Exists)

	resp, b = env.api(http.MethodGet, "/api/role-permissions/%20%20", root.ID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, response.CodeValidation, decodeFailure(t, b).Error)

	resp, _ = env.api(http.MethodDelete, "/api/role-permissions/Field%20Inspector%20", root.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := roletemplate.Get(context.Background(), env.db, "Field Inspector")
	require.ErrorIs(t, err, roletemplate.ErrTemplateNotFound)

	page, err := audit.List(context.Background(), env.db, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	assert.Equal(t, "Field Inspector", page.Entries[0].EntityID)
}

func TestRoleTemplateValidationWritesNothing(t *testing.T) {
	env := setup(t)
	root := env.createUser("root", permission.RoleSuperAdmin, nil)

	resp, b := env.api(http.MethodPut, "/api/role-permissions/Contractor", root.ID,
		`{"permissions":{"view_project":true,"launch_rocket":true}}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	failure := decodeFailure(t, b)
	assert.Equal(t, response.CodeValidation, failure.Error)
	assert.Equal(t, []string{"launch_rocket"}, failure.Fields)

	tmpl, err := roletemplate.Get(context.Background(), env.db, permission.RoleContractor)
	require.NoError(t, err)
	assert.True(t, tmpl.Permissions.Granted(permission.ViewProject))
	assert.NotContains(t, tmpl.Permissions, permission.Key("launch_rocket"))

	logs, err := audit.List(context.Background(), env.db, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, logs.Total)
}

func TestOverlayPatchAppliesOnNextRequest(t *testing.T) {
	env := setup(t)
	manager := env.createUser("manager", permission.RoleAdmin, nil)
	contractor := env.createUser("bob", permission.RoleContractor, nil)

	target := "/api/users/" + strconv.FormatUint(contractor.ID, 10) + "/permissions"

	resp, _ := env.api(http.MethodPost, "/api/role-permissions", contractor.ID,
		`{"role":"Viewer","permissions":{}}`)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, b := env.api(http.MethodPatch, target, manager.ID,
		`{"permissions":{"edit_project":true,"view_contract":false}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			UserID      uint64             `json:"userId"`
			Permissions permission.Overlay `json:"permissions"`
			Effective   []permission.Key   `json:"effective"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, contractor.ID, out.Data.UserID)
	assert.Equal(t, permission.Overlay{permission.EditProject: true, "view_contract": false}, out.Data.Permissions)
	assert.Contains(t, out.Data.Effective, permission.EditProject)
	assert.NotContains(t, out.Data.Effective, permission.Key("view_contract"))

	logs, err := audit.List(context.Background(), env.db, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs.Entries, 1)
	assert.Equal(t, audit.ActionUpdateUserPermissions, logs.Entries[0].Action)
	assert.Contains(t, logs.Entries[0].Details, `"after"`)

	// the user's own next request sees the change
	resp, b = env.api(http.MethodGet, "/api/me", contractor.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), `"edit_project"`)
}

func TestOverlayPatchRejectsUnknownKeys(t *testing.T) {
	env := setup(t)
	manager := env.createUser("manager", permission.RoleAdmin, nil)
	contractor := env.createUser("bob", permission.RoleContractor, func(u *models.User) {
		u.Permissions = permission.Overlay{permission.EditProject: true}
	})

	target := "/api/users/" + strconv.FormatUint(contractor.ID, 10) + "/permissions"

	resp, _ := env.api(http.MethodPatch, target, manager.ID, `{"permissions":{"fly_drone":true}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	stored, err := user.Get(context.Background(), env.db, contractor.ID)
	require.NoError(t, err)
	assert.Equal(t, permission.Overlay{permission.EditProject: true}, stored.Permissions)

	resp, _ = env.api(http.MethodPatch, "/api/users/999/permissions", manager.ID, `{"permissions":{}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.api(http.MethodGet, "/api/users/abc/permissions", manager.ID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	env := setup(t)
	gone := env.createUser("gone", permission.RoleSuperAdmin, func(u *models.User) {
		u.Status = models.UserStatusInactive
	})

	resp, b := env.api(http.MethodGet, "/api/permissions", gone.ID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, response.CodeAccountDeactivated, decodeFailure(t, b).Error)
}

func TestPageGuard(t *testing.T) {
	env := setup(t)

	viewer := env.createUser("vera", permission.RoleViewer, nil)
	fresh := env.createUser("fresh", permission.RoleViewer, func(u *models.User) { u.MustChangePassword = true })
	noDashboard := env.createUser("nodash", permission.RoleViewer, func(u *models.User) {
		u.Permissions = permission.Overlay{permission.ViewDashboard: false}
	})

	t.Run("signed out goes to login", func(t *testing.T) {
		resp, _ := env.page(http.MethodGet, "/dashboard", "", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("unknown session goes to login", func(t *testing.T) {
		resp, _ := env.page(http.MethodGet, "/dashboard", "not-a-session", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("allowed renders the dashboard", func(t *testing.T) {
		resp, b := env.page(http.MethodGet, "/dashboard", env.sessionFor(viewer), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(b), "Welcome, Vera")
		assert.Contains(t, string(b), "View Project")
	})

	t.Run("mandatory password change redirects", func(t *testing.T) {
		sid := env.sessionFor(fresh)

		resp, _ := env.page(http.MethodGet, "/dashboard", sid, nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/password", resp.Header.Get("Location"))

		resp, b := env.page(http.MethodGet, "/password", sid, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(b), "You must change your password")
	})

	t.Run("forbidden on landing shows no access", func(t *testing.T) {
		resp, b := env.page(http.MethodGet, "/dashboard", env.sessionFor(noDashboard), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, string(b), "No access")
		assert.Contains(t, string(b), "View Dashboard")
	})

	t.Run("forbidden elsewhere redirects to landing", func(t *testing.T) {
		resp, _ := env.page(http.MethodGet, "/admin/roles", env.sessionFor(viewer), nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	})

	staleSessions := map[string]func(t *testing.T) string{
		"inactive user": func(*testing.T) string {
			inactive := env.createUser("ivy", permission.RoleViewer, func(u *models.User) {
				u.Status = models.UserStatusInactive
			})

			return env.sessionFor(inactive)
		},
		"deleted user": func(t *testing.T) string {
			removed := env.createUser("dan", permission.RoleViewer, nil)
			sid := env.sessionFor(removed)
			require.NoError(t, env.db.Delete(&models.User{}, removed.ID).Error)

			return sid
		},
	}

	for name, sessionOf := range staleSessions {
		t.Run(name+" ends on the login page", func(t *testing.T) {
			sid := sessionOf(t)

			visited, resp, b := env.follow("/dashboard", sid)
			assert.Equal(t, []string{"/dashboard", "/login"}, visited)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(b), `<form method="post">`)
			assert.Error(t, new(websess.Data).Read(sid))

			// the login page itself must not bounce the stale session back
			resp, b = env.page(http.MethodGet, "/login", sid, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(b), "Sign in")
		})
	}
}

func TestPasswordChangeClearsMandatoryFlag(t *testing.T) {
	env := setup(t)
	fresh := env.createUser("fresh", permission.RoleViewer, func(u *models.User) { u.MustChangePassword = true })
	sid := env.sessionFor(fresh)

	resp, b := env.page(http.MethodPost, "/password", sid, url.Values{
		"current": {"wrong"}, "new": {"new-password-1"}, "confirm": {"new-password-1"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "current password is incorrect")

	resp, b = env.page(http.MethodPost, "/password", sid, url.Values{
		"current": {"correct horse"}, "new": {"short"}, "confirm": {"short"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "at least 8 characters")

	resp, _ = env.page(http.MethodPost, "/password", sid, url.Values{
		"current": {"correct horse"}, "new": {"new-password-1"}, "confirm": {"new-password-1"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	stored, err := user.Get(context.Background(), env.db, fresh.ID)
	require.NoError(t, err)
	assert.False(t, stored.MustChangePassword)
	assert.True(t, stored.VerifyPassword("new-password-1"))

	resp, _ = env.page(http.MethodGet, "/dashboard", sid, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRolesPage(t *testing.T) {
	env := setup(t)
	root := env.createUser("root", permission.RoleSuperAdmin, nil)

	resp, b := env.page(http.MethodGet, "/admin/roles", env.sessionFor(root), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), permission.RoleContractor)
	assert.Contains(t, string(b), "/api/role-permissions")
}

func TestRootRedirectsToLanding(t *testing.T) {
	env := setup(t)

	resp, _ := env.page(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestCatalogAndAuditEndpoints(t *testing.T) {
	env := setup(t)
	viewer := env.createUser("vera", permission.RoleViewer, nil)
	auditor := env.createUser("otto", permission.RoleAuditor, nil)

	resp, b := env.api(http.MethodGet, "/api/permissions", viewer.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog struct {
		OK   bool                                          `json:"ok"`
		Data map[permission.Module][]permission.Definition `json:"data"`
		All  []permission.Definition                       `json:"all"`
	}
	require.NoError(t, json.Unmarshal(b, &catalog))
	assert.True(t, catalog.OK)
	assert.Len(t, catalog.All, len(permission.AllKeys()))
	assert.Len(t, catalog.Data, len(permission.Modules()))

	resp, b = env.api(http.MethodGet, "/api/audit-logs", viewer.ID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []string{string(permission.ViewAudit)}, decodeFailure(t, b).RequiredPermissions)

	resp, b = env.api(http.MethodGet, "/api/audit-logs?page=0&limit=500", auditor.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Data  []models.AuditLog `json:"data"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(b, &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, audit.MaxPageSize, page.Limit)
	assert.Empty(t, page.Data)

	resp, b = env.api(http.MethodGet, "/api/audit-logs?page=9223372036854775807", auditor.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(b, &page))
	assert.Equal(t, audit.MaxPage, page.Page)
	assert.Equal(t, audit.DefaultPageSize, page.Limit)
	assert.NotNil(t, page.Data)
}
