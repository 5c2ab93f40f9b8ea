// Package coincache maintains a persistent cache of a signer's gas coins so
// coin selection for arbitrary gas budgets survives process restarts. It is
// a helper next to the pool layer, not part of it: pools pay gas with their
// own partition, the cache serves ad-hoc budget queries.
package coincache

import (
	"errors"

	"github.com/go-redis/redis/v7"
)

// ErrNotFound is returned by Store.Get for keys without a record.
var ErrNotFound = errors.New("coincache: not found")

// Store is the key-value backend of the cache. Implementations must be safe
// for concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
	Keys() ([]string, error)
	Close() error
}

// RedisStore persists coin records in Redis under a common key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects a store to Redis. The prefix namespaces this
// signer's records; use one prefix per address.
func NewRedisStore(opts *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get implements Store.
func (s *RedisStore) Get(key string) ([]byte, error) {
	val, err := s.client.Get(s.prefix + key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return val, err
}

// Set implements Store.
func (s *RedisStore) Set(key string, value []byte) error {
	return s.client.Set(s.prefix+key, value, 0).Err()
}

// Delete implements Store.
func (s *RedisStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	return s.client.Del(prefixed...).Err()
}

// Keys implements Store. It scans rather than using KEYS so large caches do
// not block the Redis server.
func (s *RedisStore) Keys() ([]string, error) {
	var out []string
	iter := s.client.Scan(0, s.prefix+"*", 0).Iterator()
	for iter.Next() {
		out = append(out, iter.Val()[len(s.prefix):])
	}
	return out, iter.Err()
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }
