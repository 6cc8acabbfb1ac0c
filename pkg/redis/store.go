package redis

import (
	"errors"
	"fmt"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/dukapos/go-api/pkg/cart"
	"github.com/dukapos/go-api/pkg/global"
)

// KeyThemeMode holds the device display theme ("light", "dark" or
// "system") alongside the session's cart keys.
const KeyThemeMode = "theme_mode"

// SessionStore is the Redis-backed key-value store for one till session.
// Keys are namespaced per session so carts on different devices never
// collide. Values have no TTL; a cart survives app restarts until it is
// cleared at checkout.
type SessionStore struct {
	client    *redisclient.Client
	sessionID string
}

func NewSessionStore(sessionID string) *SessionStore {
	return &SessionStore{
		client:    RedisClient(),
		sessionID: sessionID,
	}
}

func (s *SessionStore) key(key string) string {
	return fmt.Sprintf("session:%s:%s", s.sessionID, key)
}

func (s *SessionStore) Get(key string) (string, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", cart.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SessionStore) Set(key, value string) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Remove(key string) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
