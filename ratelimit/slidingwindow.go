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
)

// slidingWindow estimates the request count over the trailing Window by
// blending the current fixed window's counter with a fraction of the
// previous one, weighted by how far the current window has progressed —
// the standard approximation that avoids the double-burst at fixed-window
// boundaries without needing a sorted log of timestamps (spec §5).
type slidingWindow struct {
	store  Repository
	limit  int64
	window time.Duration
}

func newSlidingWindow(store Repository, limit int64, window time.Duration) *slidingWindow {
	return &slidingWindow{store: store, limit: limit, window: window}
}

func (s *slidingWindow) allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	curBucket := now.UnixNano() / int64(s.window)
	prevBucket := curBucket - 1

	curKey := fmt.Sprintf("%s:%d", key, curBucket)
	prevKey := fmt.Sprintf("%s:%d", key, prevBucket)

	prevCount, _, err := s.store.Get(ctx, prevKey)
	if err != nil {
		return Decision{}, err
	}

	elapsed := time.Duration(now.UnixNano() % int64(s.window))
	weight := 1 - float64(elapsed)/float64(s.window)

	curCount, err := s.store.Incr(ctx, curKey, 2*s.window)
	if err != nil {
		return Decision{}, err
	}

	estimate := float64(prevCount)*weight + float64(curCount)
	if estimate > float64(s.limit) {
		return Decision{Allowed: false, RetryAfter: s.window - elapsed}, nil
	}

	remaining := s.limit - int64(estimate)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}
