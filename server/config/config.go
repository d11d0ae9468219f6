package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
)

const (
	DefaultListenAddress = "0.0.0.0:8545"
	DefaultRatesMaxAge   = 60
	DefaultFeePct        = 10.0
	DefaultSessionCookie = "ce_session"
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidRatesMaxAge   = errors.New("invalid rates max-age")
	ErrInvalidFeePct        = errors.New("invalid default fee percentage")
	ErrInvalidSessionCookie = errors.New("invalid session cookie name")
	ErrInvalidRateLimit     = errors.New("invalid rate limit")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// RateLimit is the per-client request budget
type RateLimit struct {
	// Sustained requests per second
	RPS float64 `toml:"rps"`

	// Maximum burst size
	Burst int `toml:"burst"`
}

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The per-client rate limit, if any
	RateLimit *RateLimit `toml:"rate_limit"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`

	// The cookie carrying the session ID
	SessionCookie string `toml:"session_cookie"`

	// The Cache-Control max-age of the rates endpoint, in seconds
	RatesMaxAge int `toml:"rates_max_age"`

	// The fee percentage applied when a quote request names none
	DefaultFeePct float64 `toml:"default_fee_pct"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		RateLimit: &RateLimit{
			RPS:   5,
			Burst: 20,
		},
		SessionCookie: DefaultSessionCookie,
		RatesMaxAge:   DefaultRatesMaxAge,
		DefaultFeePct: DefaultFeePct,
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	var result error

	if !listenAddressRegex.MatchString(config.ListenAddress) {
		result = multierror.Append(result, ErrInvalidListenAddress)
	}

	if config.RatesMaxAge < 0 {
		result = multierror.Append(result, ErrInvalidRatesMaxAge)
	}

	if config.DefaultFeePct < 0 || config.DefaultFeePct >= 100 {
		result = multierror.Append(result, ErrInvalidFeePct)
	}

	if config.SessionCookie == "" {
		result = multierror.Append(result, ErrInvalidSessionCookie)
	}

	if rl := config.RateLimit; rl != nil && (rl.RPS <= 0 || rl.Burst <= 0) {
		result = multierror.Append(result, ErrInvalidRateLimit)
	}

	return result
}

// Read reads the configuration from the given path.
// Values absent from the file keep their defaults
func Read(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	cfg := DefaultConfig()

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	return cfg, nil
}
