// Package daemon wires the database, session store and web service together.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/web"
	"github.com/govfinance-admin/govfinance-admin/internal/web/session"
)

const seedTimeout = 30 * time.Second

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it is shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	if err = Seed(ctx, cfg, db); err != nil {
		return nil, err
	}

	// Initialize fiber session store
	session.Init(SessionStorage(cfg), cfg.Webserver.Session.ExpiryTime)

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database ready")

	webService, err := web.New(cfg, db)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		webService: webService,
	}, nil
}
