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
)

// Repository is the counter-store abstraction every algorithm is built on.
// It's intentionally narrow (increment-and-expire, read, reset) so both an
// in-memory store and a Redis-backed one can implement it without leaking
// backend-specific semantics into the algorithms (spec §5 — "the store is
// a swappable backend, not part of the algorithm contract").
type Repository interface {
	// Incr atomically increments the counter at key by 1, setting its
	// expiry to ttl if this call created the key, and returns the new
	// count.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the current counter value at key, and whether it exists.
	Get(ctx context.Context, key string) (int64, bool, error)

	// Set overwrites the counter at key with value and sets its expiry.
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error

	// Reset deletes the counter at key.
	Reset(ctx context.Context, key string) error
}
