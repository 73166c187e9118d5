package sessionflags

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultRedisTTL bounds how long an abandoned session's flags live.
	DefaultRedisTTL = 12 * time.Hour

	redisKeyPrefix = "teamdocs:session:"
	redisTimeout   = 3 * time.Second
)

// RedisStore keeps flags in redis under teamdocs:session:<id>:<key>. Each
// write refreshes the TTL, so a session expires some time after its last use.
type RedisStore struct {
	client  *redis.Client
	session Session
	ttl     time.Duration
}

// NewRedisStore creates a store for session using client. A zero ttl uses
// DefaultRedisTTL.
func NewRedisStore(client *redis.Client, session Session, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, session: session, ttl: ttl}
}

// RedisKey returns the redis key for a flag in a session.
func RedisKey(sessionID, key string) string {
	return redisKeyPrefix + SanitizeID(sessionID) + ":" + key
}

func (s *RedisStore) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, RedisKey(s.session.ID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session flag in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, RedisKey(s.session.ID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session flag from redis: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Del(ctx, RedisKey(s.session.ID, key)).Err(); err != nil {
		return fmt.Errorf("failed to remove session flag from redis: %w", err)
	}
	return nil
}
