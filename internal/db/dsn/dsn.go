// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/govfinance-admin/govfinance-admin/internal/config"
)

// Create builds the Data Source Name for the configured engine.
// The result is accepted by both the GORM driver and the session storage of that engine.
func Create(dbCfg *config.Config) string {
	db := dbCfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.User, db.Password),
			Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			Path:     "/" + db.Name,
			RawQuery: db.Extras,
		}

		return u.String()
	case config.EngineSQLite:
		return db.Path
	default:
		out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
			db.User,
			db.Password,
			net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			db.Name,
		)

		if db.Extras != "" {
			out += "?" + db.Extras
		}

		return out
	}
}
