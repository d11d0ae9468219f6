package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

type session struct {
	expiresAt time.Time
	userID    string
}

// Storage is the in-memory session and settings store
type Storage struct {
	users       map[string]types.User
	sessions    map[string]session
	adjustments map[string]types.AdjustmentSet

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		users:       make(map[string]types.User),
		sessions:    make(map[string]session),
		adjustments: make(map[string]types.AdjustmentSet),
	}
}

// SaveUser stores the user, replacing any previous one with the same ID
func (s *Storage) SaveUser(u types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
}

// CreateSession opens a session for the user, valid for the given TTL
func (s *Storage) CreateSession(sessionID, userID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = session{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *Storage) UserBySession(_ context.Context, sessionID string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || !time.Now().Before(sess.expiresAt) {
		return nil, storage.ErrNotFound
	}

	u, ok := s.users[sess.userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &u, nil
}

func (s *Storage) Adjustments(_ context.Context, userID string) (*types.AdjustmentSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adj, ok := s.adjustments[userID]
	if !ok {
		return nil, nil
	}

	return &adj, nil
}

func (s *Storage) SaveAdjustments(_ context.Context, userID string, adj types.AdjustmentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.adjustments[userID] = adj.Clamp()

	return nil
}
