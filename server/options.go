package server

import (
	"log/slog"

	"github.com/sig-0/remesas/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithSettings specifies the adjustment settings manager.
// Defaults to a settings hub over the server storage
func WithSettings(st Settings) Option {
	return func(s *Server) {
		s.settings = st
	}
}
