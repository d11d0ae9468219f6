package settings

import (
	"io"
	"log/slog"
	"time"
)

const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultSaveTimeout = 10 * time.Second
)

type config struct {
	logger      *slog.Logger
	debounce    time.Duration
	saveTimeout time.Duration
}

func defaultConfig() config {
	return config{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce:    DefaultDebounce,
		saveTimeout: DefaultSaveTimeout,
	}
}

type Option func(c *config)

// WithLogger specifies the logger for persistence warnings
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithDebounce specifies the quiet period before an edit is persisted.
// Defaults to 500ms
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithSaveTimeout specifies the upper bound of a single save.
// Defaults to 10s
func WithSaveTimeout(d time.Duration) Option {
	return func(c *config) {
		c.saveTimeout = d
	}
}
