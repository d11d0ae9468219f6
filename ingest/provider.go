package ingest

import (
	"context"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

// Provider is a single periodically refreshed rate provider
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns the interval at which the provider should be refreshed
	Interval() time.Duration

	// Fetch refreshes the provider, yielding the fetched readings
	Fetch(context.Context) ([]*types.ExchangeRate, error)
}

// RefreshHook is notified of every successful refresh
type RefreshHook func(name string, rates []*types.ExchangeRate)
