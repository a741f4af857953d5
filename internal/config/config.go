// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable whose JSON content overrides the file config.
const EnvConfigJSON = "GOVFINANCE_ADMIN_CONFIG_JSON"

const (
	defaultShutDownTime   = 5
	defaultSessionExpiry  = 8 * time.Hour
	defaultLoginPath      = "/login"
	defaultLandingPath    = "/dashboard"
	defaultPasswordPath   = "/password"
	defaultAdminUsername  = "admin"
	defaultIdentityHeader = "X-User-Id"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var c Config

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// identity header may be switched off explicitly with an empty string
	if !v.IsSet("auth.identityheader") {
		c.Auth.IdentityHeader = defaultIdentityHeader
	}

	// override it from env
	if JSONConfigEnv := os.Getenv(EnvConfigJSON); JSONConfigEnv != "" {
		var err error

		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	applyDefaults(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = defaultLoginPath
	}

	if c.Auth.LandingPath == "" {
		c.Auth.LandingPath = defaultLandingPath
	}

	if c.Auth.PasswordPath == "" {
		c.Auth.PasswordPath = defaultPasswordPath
	}

	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = defaultAdminUsername
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = EngineSQLite
	}
}

// validate minimal config settings.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres:
		if c.DB.Host == "" {
			return errors.Wrap(ErrDBHostEmpty, invalidErrMessage)
		}
	case EngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrDBPathEmpty, invalidErrMessage)
		}
	default:
		return errors.Wrapf(ErrUnsupportedEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Auth.LoginPath == c.Auth.LandingPath {
		return errors.Wrap(ErrAuthRoutesCollide, invalidErrMessage)
	}

	return nil
}
