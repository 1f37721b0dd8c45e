package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configPath string
	level      *slog.LevelVar
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigWatch re-reads path whenever it changes and applies the new log level.
func WithConfigWatch(path string) Option {
	return func(a *application) {
		a.configPath = path
	}
}

// WithLevel shares a log level variable with the caller.
func WithLevel(level *slog.LevelVar) Option {
	return func(a *application) {
		a.level = level
	}
}
