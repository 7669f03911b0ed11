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

// quota enforces a hard cap over a single fixed period (e.g. "1000 calls
// per day"), unlike slidingWindow it makes no attempt to smooth the
// boundary — a quota is meant to reset cleanly, not approximate a rolling
// count (spec §5).
type quota struct {
	store  Repository
	limit  int64
	window time.Duration
}

func newQuota(store Repository, limit int64, window time.Duration) *quota {
	return &quota{store: store, limit: limit, window: window}
}

func (q *quota) allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	period := now.UnixNano() / int64(q.window)

	// Counting under a period-indexed key makes the reset implicit: the
	// first request after a boundary lands on a fresh counter.
	count, err := q.store.Incr(ctx, fmt.Sprintf("%s:%d", key, period), q.window)
	if err != nil {
		return Decision{}, err
	}
	if count > q.limit {
		untilBoundary := q.window - time.Duration(now.UnixNano()%int64(q.window))
		return Decision{Allowed: false, RetryAfter: untilBoundary}, nil
	}
	return Decision{Allowed: true, Remaining: q.limit - count}, nil
}
