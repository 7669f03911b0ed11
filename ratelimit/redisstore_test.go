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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, prefix string) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, prefix)
}

func TestRedisStoreIncrArmsExpiryOnFirstIncrement(t *testing.T) {
	store := newTestRedisStore(t, "rl")
	ctx := context.Background()

	count, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	ttl, err := store.client.TTL(ctx, "rl:k").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	count, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRedisStoreGetReturnsNotFoundForMissingKey(t *testing.T) {
	store := newTestRedisStore(t, "rl")
	_, ok, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreSetThenGetRoundTrips(t *testing.T) {
	store := newTestRedisStore(t, "rl")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 7, time.Minute))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 7, v)
}

func TestRedisStoreResetDeletesKey(t *testing.T) {
	store := newTestRedisStore(t, "rl")
	ctx := context.Background()

	_, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStorePrefixNamespacesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := NewRedisStore(client, "tenant-a")
	b := NewRedisStore(client, "tenant-b")

	_, err := a.Incr(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	_, ok, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok, "a key under one prefix must not be visible under another")
}
