package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

// RedisSessionStore keeps one JSON document per conversation under
// session:<id>, refreshed to the full TTL on every save.
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{Client: client, TTL: ttl}
}

var _ service.SessionRepository = (*RedisSessionStore)(nil)

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	raw, err := s.Client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, service.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var state domain.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state *domain.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(state.SessionID), payload, s.TTL).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, sessionKey(sessionID)).Err()
}
