package gqlpersisted

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is a Storage backed by Redis, for deployments running
// more than one instance of the server (APQ's whole point — caching a
// hash→query mapping — only pays off across instances if they share
// one store).
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithTTL expires persisted query entries after d; zero (the default)
// means entries never expire.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStorage) { s.ttl = d }
}

// WithKeyPrefix namespaces keys under prefix, for sharing a Redis
// instance with other caches.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStorage) { s.prefix = prefix }
}

// NewRedisStorage builds a Storage over an already-configured
// *redis.Client; callers own the client's lifecycle.
func NewRedisStorage(client *redis.Client, opts ...RedisOption) *RedisStorage {
	s := &RedisStorage{client: client, prefix: "gqlpersisted:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) key(hash string) string { return s.prefix + hash }

func (s *RedisStorage) Save(hash, query string) error {
	ctx := context.Background()
	return s.client.Set(ctx, s.key(hash), query, s.ttl).Err()
}

func (s *RedisStorage) Load(hash string) (string, error) {
	ctx := context.Background()
	query, err := s.client.Get(ctx, s.key(hash)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return query, nil
}
