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
	"time"

	"github.com/veloxa-dev/velox/signalhub"
)

// Signal names published by an InstrumentedStore around each Repository
// operation, so cache traffic is observable on the same hub as the
// rate-limit and lifecycle signals.
const (
	SignalCacheHit    = "cache.hit"
	SignalCacheMiss   = "cache.miss"
	SignalCacheWrite  = "cache.write"
	SignalCacheForget = "cache.forget"
)

// CacheAccess is the payload attached to every cache.* event.
type CacheAccess struct {
	Key   string
	Value int64 // new counter value on writes, stored value on hits, 0 otherwise
	Err   error // non-nil when the underlying store errored
}

// InstrumentedStore wraps a Repository, publishing a cache.* event after
// every operation. Store errors are reported in the event payload and
// still returned to the caller, so failover behavior is unchanged.
type InstrumentedStore struct {
	inner  Repository
	hub    *signalhub.Hub
	sender string
}

// NewInstrumentedStore instruments inner, publishing to hub with the given
// sender identity (typically the backend name, e.g. "memory" or "redis").
func NewInstrumentedStore(inner Repository, hub *signalhub.Hub, sender string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, hub: hub, sender: sender}
}

func (s *InstrumentedStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := s.inner.Incr(ctx, key, ttl)
	s.publish(SignalCacheWrite, CacheAccess{Key: key, Value: n, Err: err})
	return n, err
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) (int64, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	signal := SignalCacheHit
	if !ok || err != nil {
		signal = SignalCacheMiss
	}
	s.publish(signal, CacheAccess{Key: key, Value: v, Err: err})
	return v, ok, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	err := s.inner.Set(ctx, key, value, ttl)
	s.publish(SignalCacheWrite, CacheAccess{Key: key, Value: value, Err: err})
	return err
}

func (s *InstrumentedStore) Reset(ctx context.Context, key string) error {
	err := s.inner.Reset(ctx, key)
	s.publish(SignalCacheForget, CacheAccess{Key: key, Err: err})
	return err
}

func (s *InstrumentedStore) publish(signal string, access CacheAccess) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(signalhub.Event{
		Signal:  signal,
		Sender:  s.sender,
		At:      time.Now(),
		Payload: access,
	})
}
