// Package logger configures the global zerolog logger and carries the acting
// user on request scoped loggers.
package logger

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Init configures the global logger from cfg. Console and file output are
// independent; with neither enabled nothing is written.
func Init(cfg Log) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "loglevel %s is not supported", cfg.LogLevel)
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, consoleWriter(cfg.Console))
	}

	if cfg.File.Enabled {
		w, err := fileWriter(cfg.File)
		if err != nil {
			return err
		}

		writers = append(writers, w)
	}

	hook, err := NewPrometheusHook(cfg.ServiceName)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = ErrorHandler

	lctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Hook(hook).
		With().Timestamp().Str("app", cfg.AppName)

	if cfg.ReportCaller {
		lctx = lctx.Caller()
	}

	// stack traces of pkg/errors only at trace level
	if level == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		lctx = lctx.Stack()
	}

	log.Logger = lctx.Logger()

	SetAllowSampleRate(cfg.AllowSampleRate)

	return nil
}
