package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	redisclient "github.com/nmorales-dev/localchat-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

// Record is the server-side session state stored in Redis, keyed by the JWT
// jti. SelectedModel is mutable for the life of the session; revoking the
// record invalidates the token before its exp.
type Record struct {
	AccountID     int64      `json:"account_id"`
	Username      string     `json:"username"`
	Role          enums.Role `json:"role"`
	SelectedModel string     `json:"selected_model"`
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager handles server-side session records backed by Redis.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Create stores a fresh session record and returns its identifier, which the
// caller embeds into the JWT as jti.
func (m *Manager) Create(ctx context.Context, record Record) (string, error) {
	if record.AccountID <= 0 {
		return "", fmt.Errorf("account id must be positive")
	}
	if !record.Role.IsValid() {
		return "", fmt.Errorf("invalid role %q", record.Role)
	}

	sessionID := NewSessionID()
	if err := m.put(ctx, sessionID, record); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get returns the session record, or ErrNoSession when it was revoked or expired.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Record, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decoding session record: %w", err)
	}
	return &record, nil
}

// SetModel updates the selected model on an existing session, refreshing its TTL.
func (m *Manager) SetModel(ctx context.Context, sessionID, model string) error {
	record, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	record.SelectedModel = model
	return m.put(ctx, sessionID, *record)
}

// Revoke deletes the session record, invalidating any token carrying its jti.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces a stable identifier used as the JWT jti/Redis key.
func NewSessionID() string {
	return uuid.NewString()
}

func (m *Manager) put(ctx context.Context, sessionID string, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), string(payload), m.ttl)
}
