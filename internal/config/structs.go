package config

import (
	"time"

	"github.com/govfinance-admin/govfinance-admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Auth holds identity and page routing settings.
type Auth struct {
	// IdentityHeader carries the caller's user ID on API requests. Only
	// enable it behind a proxy that sets it; empty means session only.
	IdentityHeader string

	LoginPath    string // sign-in page
	LandingPath  string // neutral page forbidden requests are sent to
	PasswordPath string // mandatory password change page

	// AdminUsername and AdminEmail describe the account seeded on an empty database.
	AdminUsername string
	AdminEmail    string
}
