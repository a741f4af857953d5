package logger

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// splitWriter sends lines at or above threshold to high and the rest to low.
type splitWriter struct {
	low, high io.Writer
	threshold zerolog.Level
}

func (w splitWriter) Write(p []byte) (int, error) {
	return w.low.Write(p) //nolint:wrapcheck
}

// WriteLevel implements zerolog.LevelWriter.
func (w splitWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l == zerolog.Disabled {
		return 0, nil
	}

	if l >= w.threshold && l != zerolog.NoLevel {
		return w.high.Write(p) //nolint:wrapcheck
	}

	return w.low.Write(p) //nolint:wrapcheck
}

// teeWriter writes every line to all and errors additionally to errs.
type teeWriter struct {
	all, errs io.Writer
}

func (w teeWriter) Write(p []byte) (int, error) {
	return w.all.Write(p) //nolint:wrapcheck
}

// WriteLevel implements zerolog.LevelWriter.
func (w teeWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	n, err := w.all.Write(p)
	if err != nil || l < zerolog.ErrorLevel || l == zerolog.NoLevel || l == zerolog.Disabled {
		return n, err //nolint:wrapcheck
	}

	return w.errs.Write(p) //nolint:wrapcheck
}

// consoleWriter writes info and below to stdout and warnings and above to stderr.
func consoleWriter(cfg Console) io.Writer {
	var stdout, stderr io.Writer = os.Stdout, os.Stderr

	if cfg.UseConsoleWriter {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat}
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: zerolog.TimeFieldFormat}
	}

	return splitWriter{low: stdout, high: stderr, threshold: zerolog.WarnLevel}
}

// fileWriter writes the application log and a separate error log.
func fileWriter(cfg LogFile) (io.Writer, error) {
	all, err := OpenRotation(cfg.Path, cfg.App)
	if err != nil {
		return nil, err
	}

	errs, err := OpenRotation(cfg.Path, cfg.Error)
	if err != nil {
		return nil, err
	}

	return teeWriter{all: all, errs: errs}, nil
}

// OpenRotation creates dir and returns a rotating writer for r.
func OpenRotation(dir string, r Rotation) (io.Writer, error) {
	if r.Name == "" {
		return nil, ErrFileNameIsEmpty
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd
			return nil, errors.Wrapf(err, "can't create log directory %s", dir)
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(dir, r.Name),
		MaxSize:    r.MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
	}, nil
}
