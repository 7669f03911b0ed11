// Copyright 2025 The Velox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Repository backed by Redis, sharing rate-limit counters
// across every instance of a horizontally scaled service instead of
// tracking them per-process (spec §5 — "a distributed deployment needs a
// shared counter store").
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. prefix namespaces keys so a
// rate-limit deployment can share a Redis instance with other subsystems.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	fullKey := s.key(key)
	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: redis incr %q: %w", key, err)
	}
	// Only arm the expiry on the key's first increment; ExpireNX is a
	// no-op if another Incr already set one, so a window's ttl is never
	// pushed back out by later requests within it.
	if count == 1 {
		if err := s.client.ExpireNX(ctx, fullKey, ttl).Err(); err != nil {
			return 0, fmt.Errorf("ratelimit: redis expire %q: %w", key, err)
		}
	}
	return count, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ratelimit: redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis del %q: %w", key, err)
	}
	return nil
}
