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
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

// MemoryStore is a process-local Repository, bounded by an LRU eviction
// policy so an unbounded set of rate-limit keys (e.g. client IPs) can't
// grow memory use without limit; entries also expire on their own ttl
// regardless of eviction pressure.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *memoryEntry]
}

// NewMemoryStore builds a MemoryStore holding at most maxKeys entries.
func NewMemoryStore(maxKeys int) *MemoryStore {
	c, _ := lru.New[string, *memoryEntry](maxKeys)
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.cache.Get(key)
	if !ok || now.After(entry.expiresAt) {
		entry = &memoryEntry{value: 0, expiresAt: now.Add(ttl)}
	}
	entry.value++
	s.cache.Add(key, entry)
	return entry.value, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache.Get(key)
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(key, &memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(key)
	return nil
}
