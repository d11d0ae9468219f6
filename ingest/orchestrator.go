// Package ingest keeps the rate sources warm by refreshing each
// of them on its own schedule, in the background
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
)

const (
	DefaultRetryDelay = 10 * time.Second

	resultBufferSize = 100
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

// Orchestrator is the refresh scheduler for registered providers
type Orchestrator struct {
	logger *slog.Logger
	hook   RefreshHook

	q             iq.Queue[refreshJob]
	queryInterval time.Duration
	retryDelay    time.Duration
	qMux          sync.Mutex
}

// New creates a new Orchestrator instance
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		q:             iq.NewQueue[refreshJob](),
		queryInterval: time.Second,
		retryDelay:    DefaultRetryDelay,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new provider with the orchestrator.
// The provider is immediately queued up for execution
func (o *Orchestrator) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	id := xid.New()

	o.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"id", id.String(),
		"interval", p.Interval().String(),
	)

	o.schedule(refreshJob{
		due:      time.Now().UTC(),
		provider: p,
		id:       id,
	})

	return nil
}

// Start starts the refresh loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	results := make(chan refreshResult, resultBufferSize)

	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// dispatch spawns a worker for every due job
	dispatch := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				next := o.next()
				if next == nil {
					return
				}

				o.logger.Debug(
					"refreshing provider",
					"name", next.provider.Name(),
					"attempt", next.attempt+1,
				)

				go runRefresh(ctx, *next, results)
			}
		}
	}

	// Refresh everything on boot
	dispatch()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			dispatch()
		case res := <-results:
			o.handleResult(res)
		}
	}
}

// handleResult reschedules the job, at its interval on success
// and with a growing delay on consecutive failures
func (o *Orchestrator) handleResult(res refreshResult) {
	var (
		now  = time.Now().UTC()
		job  = res.job
		name = job.provider.Name()
	)

	if res.err != nil {
		job.attempt++

		delay := retryBackoff(o.retryDelay, job.provider.Interval(), job.attempt)

		o.logger.Warn(
			"unable to refresh provider",
			"name", name,
			"id", job.id.String(),
			"attempt", job.attempt,
			"retry_in", delay.String(),
			"err", res.err,
		)

		job.due = now.Add(delay)
		o.schedule(job)

		return
	}

	o.logger.Info(
		"refreshed rates",
		"name", name,
		"count", len(res.rates),
		"took", res.took.String(),
	)

	if o.hook != nil {
		o.hook(name, res.rates)
	}

	job.attempt = 0
	job.due = now.Add(job.provider.Interval())
	o.schedule(job)
}

// schedule queues up a provider refresh
func (o *Orchestrator) schedule(job refreshJob) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(job)
}

// next fetches the next due refresh job, as of the moment of calling
func (o *Orchestrator) next() *refreshJob {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	if o.q.Len() == 0 {
		return nil // all jobs are running
	}

	if o.q.Index(0).due.After(time.Now().UTC()) {
		return nil // the earliest job is in the future
	}

	return o.q.PopFront()
}
