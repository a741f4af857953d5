package daemon

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dchest/uniuri"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

const initialPasswordLen = 20

// CredentialsOutput receives the initial administrator password. It is kept
// out of the log, which may be persisted.
var CredentialsOutput io.Writer = os.Stdout //nolint:gochecknoglobals

// Seed installs the built-in role templates and an initial administrator on
// an empty database. Existing data is never touched.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	templates, err := roletemplate.Count(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to count role templates: %w", err)
	}

	if templates == 0 {
		for _, d := range permission.Defaults() {
			if _, err = roletemplate.Upsert(ctx, db, d.Role, d.Grants, d.Description); err != nil {
				return fmt.Errorf("failed to seed role template %s: %w", d.Role, err)
			}
		}

		log.Info().Int("roles", len(permission.Defaults())).Msg("seeded default role templates")
	}

	users, err := user.Count(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if users > 0 {
		return nil
	}

	password := uniuri.NewLen(initialPasswordLen)

	admin := &models.User{
		Username:           cfg.Auth.AdminUsername,
		Name:               "Administrator",
		Email:              cfg.Auth.AdminEmail,
		Password:           models.HashPassword(password),
		Role:               permission.RoleSuperAdmin,
		Status:             models.UserStatusActive,
		MustChangePassword: true,
	}

	if err = user.Create(ctx, db, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// printed once; the password must be changed at first sign-in
	_, err = fmt.Fprintf(CredentialsOutput, "initial administrator %q created with password %s\n",
		admin.Username, password)
	if err != nil {
		return fmt.Errorf("failed to print initial credentials: %w", err)
	}

	log.Warn().Str("username", admin.Username).Msg("created initial administrator, password printed to stdout")

	return nil
}
