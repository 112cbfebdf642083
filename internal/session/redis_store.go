package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisStore implements Store
var _ Store = (*redisStore)(nil)

type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed ephemeral session store. Each scope key
// maps to a hash of field -> value.
func NewRedisStore(client *redis.Client, logger *zap.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.Named("RedisSessionStore"),
	}
}

func (s *redisStore) Set(ctx context.Context, scopeKey string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := s.client.HSet(ctx, scopeKey, args...).Err(); err != nil {
		s.logger.Error("Failed to set session fields", zap.Error(err), zap.String("scopeKey", scopeKey))
		return fmt.Errorf("failed to set session fields for %s: %w", scopeKey, err)
	}
	s.logger.Debug("Session fields set", zap.String("scopeKey", scopeKey), zap.Int("fields", len(fields)))
	return nil
}

func (s *redisStore) Get(ctx context.Context, scopeKey string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, scopeKey).Result()
	if err != nil {
		s.logger.Error("Failed to get session fields", zap.Error(err), zap.String("scopeKey", scopeKey))
		return nil, fmt.Errorf("failed to get session fields for %s: %w", scopeKey, err)
	}
	// HGetAll returns an empty map for a missing key; callers treat both the
	// same way.
	return fields, nil
}

func (s *redisStore) Delete(ctx context.Context, scopeKeys ...string) error {
	if len(scopeKeys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, scopeKeys...).Err(); err != nil {
		s.logger.Error("Failed to delete session scopes", zap.Error(err), zap.Strings("scopeKeys", scopeKeys))
		return fmt.Errorf("failed to delete session scopes: %w", err)
	}
	s.logger.Debug("Session scopes deleted", zap.Strings("scopeKeys", scopeKeys))
	return nil
}
