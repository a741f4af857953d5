// Package fiber provides the access log middleware.
package fiber

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/govfinance-admin/govfinance-admin/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// CheckAliveURI for disabling logging of check alive http calls.
	CheckAliveURI string
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// accessWriter returns the destinations of the access log.
func accessWriter(cfg logger.Log) io.Writer {
	var writers []io.Writer

	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		if cfg.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	if cfg.File.Enabled {
		w, err := logger.OpenRotation(cfg.File.Path, cfg.File.Access)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("access log file disabled")
		} else {
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return zerolog.MultiLevelWriter(writers...)
	}
}

// New creates a fiber access logging middleware. Requests that authenticated
// carry the acting user's id, name and role.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	access := zerolog.New(accessWriter(cfg.Config)).With().Timestamp().Logger()

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		latency := time.Since(start)
		c.Set("X-Response-Time", latency.String())

		if cfg.Config.DisableCheckAlive && c.Path() == cfg.CheckAliveURI {
			return nil
		}

		// OriginalURL keeps the path as requested, fasthttp normalizes c.Path.
		e := access.Log().
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", latency).
			Str("method", c.Method()).
			Str("uri", c.OriginalURL()).
			Str("host", c.Hostname()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("referer", c.Get(fiber.HeaderReferer)).
			Str("forwarded_for", c.Get(fiber.HeaderXForwardedFor))

		if id, ok := logger.IdentityFrom(c.UserContext()); ok {
			e.Uint64("user_id", id.UserID).Str("username", id.Username).Str("role", id.Role)
		}

		if chainErr != nil {
			e.Err(chainErr)
		}

		e.Send()

		return nil
	}
}
