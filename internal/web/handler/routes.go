package handler

import (
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/guard"
)

// GuardRoutes returns the page guard targets from the configuration.
func GuardRoutes(cfg *config.Config) guard.Routes {
	return guard.Routes{
		Login:    cfg.Auth.LoginPath,
		Landing:  cfg.Auth.LandingPath,
		Password: cfg.Auth.PasswordPath,
	}
}
