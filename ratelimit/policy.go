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

// Package ratelimit evaluates per-key request limits under one of three
// algorithms (token bucket, sliding window, fixed quota), backed by a
// pluggable counter store, with a configurable failover mode for when that
// store is unreachable (spec §5).
package ratelimit

import "time"

// Algorithm selects how a Policy's limit is enforced.
type Algorithm int

const (
	TokenBucket Algorithm = iota
	SlidingWindow
	Quota
)

func (a Algorithm) String() string {
	switch a {
	case TokenBucket:
		return "token_bucket"
	case SlidingWindow:
		return "sliding_window"
	case Quota:
		return "quota"
	default:
		return "unknown"
	}
}

// FailoverMode controls what Allow returns when the backing store can't be
// reached to evaluate a request.
type FailoverMode int

const (
	// FailOpen lets the request through when the store is unreachable.
	FailOpen FailoverMode = iota
	// FailClosed rejects the request when the store is unreachable.
	FailClosed
	// FailLocal falls back to an in-process, best-effort token bucket that
	// ignores distributed state, trading accuracy for availability.
	FailLocal
)

func (f FailoverMode) String() string {
	switch f {
	case FailOpen:
		return "allow"
	case FailClosed:
		return "block"
	case FailLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Policy is the compiled configuration for one rate limit: an algorithm, a
// limit/window (or burst, for token bucket), and what to do when the store
// backing it is unavailable.
type Policy struct {
	Name      string
	Algorithm Algorithm
	Limit     int64 // requests allowed per Window (SlidingWindow/Quota) or refilled per RefillInterval (TokenBucket)
	Burst     int64 // TokenBucket only: bucket capacity
	// RefillInterval is the period over which a token bucket regains Limit
	// tokens; zero means one second, i.e. Limit is a per-second rate.
	RefillInterval time.Duration
	Window         time.Duration // SlidingWindow/Quota only
	Failover       FailoverMode
}

// refillRate converts Limit tokens per RefillInterval into the tokens-per-
// second rate the token bucket runs on.
func (p Policy) refillRate() float64 {
	if p.RefillInterval <= 0 {
		return float64(p.Limit)
	}
	return float64(p.Limit) / p.RefillInterval.Seconds()
}

// KeyFunc derives the rate-limit key for a request-scoped value (typically
// a client IP, API key, or user ID); it is intentionally untyped here so
// callers in the router middleware package can adapt *router.Context
// without this package importing router.
type KeyFunc func(any) string

// Decision is the outcome of one Allow evaluation.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	Degraded   bool         // true when Failover kicked in because the store errored
	Failover   FailoverMode // which mode produced the decision; meaningful only when Degraded
}
