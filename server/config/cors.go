package config

import "net/http"

// CORS is the cross-origin configuration of the API
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
	AllowedHeaders []string `toml:"allowed_headers"`

	// MaxAge is the preflight cache duration, in seconds
	MaxAge int `toml:"max_age"`
}

// DefaultCORSConfig returns the default CORS configuration,
// open to any origin
func DefaultCORSConfig() *CORS {
	return &CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}
}
