package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/sig-0/remesas/storage/types"
)

// Store loads and persists the users' adjustments
type Store interface {
	Saver

	Adjustments(ctx context.Context, userID string) (*types.AdjustmentSet, error)
}

// Hub keeps one editor per user, loading the stored adjustments lazily
type Hub struct {
	store   Store
	editors map[string]*Editor
	opts    []Option

	mu sync.Mutex
}

// NewHub creates a new editor hub. The options apply to every editor
func NewHub(store Store, opts ...Option) *Hub {
	return &Hub{
		store:   store,
		editors: make(map[string]*Editor),
		opts:    opts,
	}
}

// Editor returns the user's editor, loading it on first use
func (h *Hub) Editor(ctx context.Context, userID string) (*Editor, error) {
	h.mu.Lock()
	e, ok := h.editors[userID]
	h.mu.Unlock()

	if ok {
		return e, nil
	}

	stored, err := h.store.Adjustments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to load adjustments: %w", err)
	}

	loaded := NewEditor(h.store, userID, types.DefaultAdjustments(), StateDefault, h.opts...)
	if stored != nil {
		loaded = NewEditor(h.store, userID, *stored, StatePersisted, h.opts...)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Another request could have loaded it in the meantime
	if e, ok = h.editors[userID]; ok {
		return e, nil
	}

	h.editors[userID] = loaded

	return loaded, nil
}

// Adjustments returns the user's current adjustments
func (h *Hub) Adjustments(ctx context.Context, userID string) (types.AdjustmentSet, error) {
	e, err := h.Editor(ctx, userID)
	if err != nil {
		return types.AdjustmentSet{}, err
	}

	return e.Adjustments(), nil
}

// Update edits the user's adjustments, returning the clamped values
func (h *Hub) Update(ctx context.Context, userID string, adj types.AdjustmentSet) (types.AdjustmentSet, error) {
	e, err := h.Editor(ctx, userID)
	if err != nil {
		return types.AdjustmentSet{}, err
	}

	return e.Update(adj), nil
}

// Flush saves every pending edit
func (h *Hub) Flush(ctx context.Context) error {
	var result error

	for _, e := range h.snapshot() {
		if err := e.Flush(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("user %s: %w", e.userID, err))
		}
	}

	return result
}

// Close stops every editor
func (h *Hub) Close() {
	for _, e := range h.snapshot() {
		e.Close()
	}
}

func (h *Hub) snapshot() []*Editor {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*Editor, 0, len(h.editors))
	for _, e := range h.editors {
		out = append(out, e)
	}

	return out
}
