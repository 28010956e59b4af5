package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	redisclient "github.com/angelmondragon/wanderlust-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager stores login sessions in redis. A session maps its id (the JWT jti)
// to the owning user id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, sessionID string, userID uuid.UUID) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newManager(client, client, cfg)
}

func newManager(store sessionStore, keyer sessionKeyer, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if access := cfg.AccessTTL(); ttl < access {
		return nil, fmt.Errorf("session ttl (%s) must be at least the access token ttl (%s)", ttl, access)
	}
	return &Manager{store: store, keyer: keyer, ttl: ttl}, nil
}

// Create opens a session for userID and returns its id.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}
	sessionID := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), userID.String(), m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// HasSession reports whether sessionID is still open and belongs to userID.
func (m *Manager) HasSession(ctx context.Context, sessionID string, userID uuid.UUID) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	stored, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return stored == userID.String(), nil
}

// Revoke ends the session. Revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// TTL is the lifetime applied to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// NewSessionID produces the identifier used as the JWT jti and redis key.
func NewSessionID() string {
	return uuid.NewString()
}
