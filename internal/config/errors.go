package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedEngine error if config db.gormengine is not mysql, postgres or sqlite.
	ErrUnsupportedEngine = errors.New("toml config db.gormengine is not supported")

	// ErrDBHostEmpty error if a server based engine has no host.
	ErrDBHostEmpty = errors.New("toml config db.host can not be empty")

	// ErrDBPathEmpty error if sqlite has no database file.
	ErrDBPathEmpty = errors.New("toml config db.path can not be empty for sqlite")

	// ErrAuthRoutesCollide error if login and landing route are the same.
	ErrAuthRoutesCollide = errors.New("toml config auth.loginpath and auth.landingpath must differ")
)

// ErrNilConfig is returned when a nil configuration is passed.
var ErrNilConfig = errors.New("config is nil")
