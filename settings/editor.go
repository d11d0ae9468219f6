// Package settings manages the per-user adjustment percentages.
// Edits are visible immediately and persisted with a trailing-edge
// debounce, so a burst of edits results in a single write
package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

// State is the persistence state of the edited adjustments
type State int

const (
	// StateDefault means the adjustments were never edited nor stored
	StateDefault State = iota

	// StateEdited means the local adjustments are not yet durable
	StateEdited

	// StatePersisted means the local adjustments match the stored ones
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateEdited:
		return "edited"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Saver persists the user's adjustments
type Saver interface {
	SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error
}

// Editor holds a single user's adjustments
type Editor struct {
	saver  Saver
	timer  *time.Timer
	cfg    config
	userID string

	adj        types.AdjustmentSet
	state      State
	generation uint64
	closed     bool

	mu sync.Mutex
}

// NewEditor creates an editor seeded with the given adjustments and state
func NewEditor(
	saver Saver,
	userID string,
	initial types.AdjustmentSet,
	state State,
	opts ...Option,
) *Editor {
	cfg := defaultConfig()

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Editor{
		saver:  saver,
		cfg:    cfg,
		userID: userID,
		adj:    initial.Clamp(),
		state:  state,
	}
}

// Adjustments returns the current (local) adjustments
func (e *Editor) Adjustments() types.AdjustmentSet {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.adj
}

// State returns the persistence state
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Update replaces the adjustments and schedules a debounced save.
// The clamped adjustments are returned
func (e *Editor) Update(adj types.AdjustmentSet) types.AdjustmentSet {
	clamped := adj.Clamp()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.adj = clamped
	e.state = StateEdited
	e.generation++

	if e.closed {
		return clamped
	}

	if e.timer != nil {
		e.timer.Stop()
	}

	generation := e.generation
	e.timer = time.AfterFunc(e.cfg.debounce, func() {
		e.persist(generation)
	})

	return clamped
}

// Flush saves any pending edit immediately
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()

	if e.state != StateEdited {
		e.mu.Unlock()

		return nil
	}

	if e.timer != nil {
		e.timer.Stop()
	}

	var (
		generation = e.generation
		adj        = e.adj
	)

	e.mu.Unlock()

	err := e.saver.SaveAdjustments(ctx, e.userID, adj)

	e.settle(generation, err)

	if err != nil {
		return fmt.Errorf("unable to save adjustments: %w", err)
	}

	return nil
}

// Close stops any pending save. Unsaved edits are dropped,
// call Flush beforehand to keep them
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	if e.timer != nil {
		e.timer.Stop()
	}
}

// persist saves the adjustments of the given generation, if still current
func (e *Editor) persist(generation uint64) {
	e.mu.Lock()

	if e.closed || generation != e.generation {
		e.mu.Unlock()

		return
	}

	adj := e.adj
	e.mu.Unlock()

	ctx, cancelFn := context.WithTimeout(context.Background(), e.cfg.saveTimeout)
	defer cancelFn()

	e.settle(generation, e.saver.SaveAdjustments(ctx, e.userID, adj))
}

// settle applies the save outcome. Outcomes of superseded
// generations are discarded
func (e *Editor) settle(generation uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation {
		return
	}

	if err != nil {
		e.cfg.logger.Warn(
			"unable to persist adjustments",
			"user", e.userID,
			"err", err,
		)

		return
	}

	e.state = StatePersisted
}
