package aggregate

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

type Option func(a *Aggregator)

// WithLogger specifies the logger for the aggregator
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithSourceTimeout specifies the upper bound for a single source fetch,
// retries included. Defaults to 8s
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.sourceTimeout = d
	}
}

// WithRetries specifies how many times a failed source fetch is retried.
// Defaults to 1
func WithRetries(n uint64) Option {
	return func(a *Aggregator) {
		a.retries = n
	}
}

// WithRetryDelay specifies the constant backoff between retries.
// Defaults to 250ms
func WithRetryDelay(d time.Duration) Option {
	return func(a *Aggregator) {
		a.retryDelay = d
	}
}

// WithRateLimit specifies the per-source upstream request rate
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(a *Aggregator) {
		a.limit = limit
		a.burst = burst
	}
}

// WithCache specifies the result cache, shared with other aggregators
func WithCache(c *Cache) Option {
	return func(a *Aggregator) {
		a.cache = c
	}
}
