// Package redis implements the session and settings storage on top of Redis.
//
// Layout:
//   - <prefix>session:<id>   string, the owning user ID (expires with the session)
//   - <prefix>user:<id>      hash, the user record
//   - <prefix>settings:<id>  string, the JSON-encoded adjustments
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

// DefaultPrefix is the key prefix used when none is set
const DefaultPrefix = "remesas:"

var errInvalidTTL = errors.New("session TTL must be positive")

// Client is the subset of the Redis API the storage relies on
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

type Option func(*Storage)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

type Storage struct {
	client Client
	prefix string
}

func NewStorage(client Client, opts ...Option) *Storage {
	s := &Storage{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewClient creates a Redis client from a redis:// URL
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis URL: %w", err)
	}

	return redis.NewClient(opts), nil
}

func (s *Storage) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

func (s *Storage) userKey(id string) string {
	return s.prefix + "user:" + id
}

func (s *Storage) settingsKey(id string) string {
	return s.prefix + "settings:" + id
}

// SaveUser stores the user record
func (s *Storage) SaveUser(ctx context.Context, u types.User) error {
	if err := s.client.HSet(ctx, s.userKey(u.ID), encodeUser(u)).Err(); err != nil {
		return fmt.Errorf("unable to save user: %w", err)
	}

	return nil
}

// CreateSession opens a session for the user, expiring after the TTL
func (s *Storage) CreateSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return errInvalidTTL
	}

	if err := s.client.Set(ctx, s.sessionKey(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("unable to create session: %w", err)
	}

	return nil
}

func (s *Storage) UserBySession(ctx context.Context, sessionID string) (*types.User, error) {
	userID, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("unable to fetch session: %w", err)
	}

	fields, err := s.client.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch user: %w", err)
	}

	// HGETALL yields an empty map for missing keys
	if len(fields) == 0 {
		return nil, storage.ErrNotFound
	}

	u, err := decodeUser(userID, fields)
	if err != nil {
		return nil, fmt.Errorf("unable to decode user %s: %w", userID, err)
	}

	return u, nil
}

func (s *Storage) Adjustments(ctx context.Context, userID string) (*types.AdjustmentSet, error) {
	raw, err := s.client.Get(ctx, s.settingsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch adjustments: %w", err)
	}

	var adj types.AdjustmentSet
	if err = json.Unmarshal(raw, &adj); err != nil {
		return nil, fmt.Errorf("unable to decode adjustments: %w", err)
	}

	adj = adj.Clamp()

	return &adj, nil
}

func (s *Storage) SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error {
	raw, err := json.Marshal(adj.Clamp())
	if err != nil {
		return fmt.Errorf("unable to encode adjustments: %w", err)
	}

	if err = s.client.Set(ctx, s.settingsKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("unable to save adjustments: %w", err)
	}

	return nil
}

func encodeUser(u types.User) map[string]string {
	fields := map[string]string{
		"email":      u.Email,
		"role":       u.Role,
		"plan":       u.Plan,
		"active":     strconv.FormatBool(u.Active),
		"expires_at": "",
	}

	if u.ExpiresAt != nil {
		fields["expires_at"] = u.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return fields
}

func decodeUser(id string, fields map[string]string) (*types.User, error) {
	u := &types.User{
		ID:    id,
		Email: fields["email"],
		Role:  fields["role"],
		Plan:  fields["plan"],
	}

	if raw := fields["active"]; raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid active flag: %w", err)
		}

		u.Active = active
	}

	if raw := fields["expires_at"]; raw != "" {
		expiresAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry: %w", err)
		}

		u.ExpiresAt = &expiresAt
	}

	return u, nil
}
