package ingest

import (
	"context"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

type fetchDelegate func(context.Context) ([]*types.ExchangeRate, error)

// mockProvider is a provider with a fixed name and interval
type mockProvider struct {
	fetchFn  fetchDelegate
	name     string
	interval time.Duration
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Interval() time.Duration {
	return m.interval
}

func (m *mockProvider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	if m.fetchFn == nil {
		return nil, nil
	}

	return m.fetchFn(ctx)
}
