package logger

import "time"

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
	// UseConsoleWriter prints human readable lines instead of JSON.
	UseConsoleWriter bool `toml:"useConsoleWriter" mapstructure:"useConsoleWriter"`
}

// Rotation describes one rotated log file inside LogFile.Path.
type Rotation struct {
	Name       string `toml:"name" mapstructure:"name"`
	MaxSize    int    `toml:"maxSize" mapstructure:"maxSize"`       // megabytes
	MaxBackups int    `toml:"maxBackups" mapstructure:"maxBackups"` // files kept
	MaxAge     int    `toml:"maxAge" mapstructure:"maxAge"`         // days
}

// LogFile configures file based logging with rotation.
type LogFile struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path" mapstructure:"path"`

	// App receives every application log line.
	App Rotation `toml:"app" mapstructure:"app"`
	// Error additionally receives error and fatal lines.
	Error Rotation `toml:"error" mapstructure:"error"`
	// Access receives the HTTP access log.
	Access Rotation `toml:"access" mapstructure:"access"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole if true the web service logs requests to console.
	// Does not overrule flag Console.Enabled!
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	// SlowQueryThreshold marks database queries slower than this as warnings. Zero disables it.
	SlowQueryThreshold time.Duration

	// AllowSampleRate logs every Nth allowed authorization decision. Zero logs none;
	// denials are always logged.
	AllowSampleRate uint32

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file" mapstructure:"file"`
}
