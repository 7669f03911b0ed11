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
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// tokenBucketLimiter keeps one golang.org/x/time/rate.Limiter per key,
// bounded by an LRU so the limiter set can't grow without bound. It only
// ever runs locally: token bucket state doesn't distribute across
// instances the way the counter-based algorithms do through Repository
// (spec §5 — token bucket is explicitly process-local).
type tokenBucketLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rps      float64
	burst    int
}

func newTokenBucketLimiter(maxKeys int, ratePerSecond float64, burst int64) *tokenBucketLimiter {
	c, _ := lru.New[string, *rate.Limiter](maxKeys)
	return &tokenBucketLimiter{limiters: c, rps: ratePerSecond, burst: int(burst)}
}

func (t *tokenBucketLimiter) allow(key string) Decision {
	t.mu.Lock()
	limiter, ok := t.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(t.rps), t.burst)
		t.limiters.Add(key, limiter)
	}
	t.mu.Unlock()

	reservation := limiter.Reserve()
	if !reservation.OK() {
		return Decision{Allowed: false}
	}
	delay := reservation.Delay()
	if delay > 0 {
		reservation.Cancel()
		return Decision{Allowed: false, RetryAfter: delay}
	}
	return Decision{Allowed: true, Remaining: int64(limiter.Tokens())}
}
