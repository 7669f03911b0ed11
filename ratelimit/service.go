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

// ServiceOption configures a Service at construction time.
type ServiceOption func(*Service)

// WithSignalHub wires the service to publish a SignalAllowed or
// SignalBlocked event after every Allow call.
func WithSignalHub(hub *signalhub.Hub) ServiceOption {
	return func(s *Service) { s.hub = hub }
}

// WithMaxLocalKeys bounds the key cardinality for the in-process
// algorithms (token bucket, and the FailLocal fallback for the others).
func WithMaxLocalKeys(n int) ServiceOption {
	return func(s *Service) { s.maxLocalKeys = n }
}

// Service evaluates a single Policy against a Repository, applying the
// policy's FailoverMode if the store errors, and publishing an evaluation
// event on every call.
type Service struct {
	policy Policy
	store  Repository
	hub    *signalhub.Hub

	maxLocalKeys int
	tokenBucket  *tokenBucketLimiter // TokenBucket algorithm, or FailLocal fallback
	window       *slidingWindow
	quota        *quota
}

// New constructs a Service for policy backed by store.
func New(policy Policy, store Repository, opts ...ServiceOption) *Service {
	s := &Service{policy: policy, store: store, maxLocalKeys: 10_000}
	for _, opt := range opts {
		opt(s)
	}

	switch policy.Algorithm {
	case TokenBucket:
		s.tokenBucket = newTokenBucketLimiter(s.maxLocalKeys, policy.refillRate(), policy.Burst)
	case SlidingWindow:
		s.window = newSlidingWindow(store, policy.Limit, policy.Window)
	case Quota:
		s.quota = newQuota(store, policy.Limit, policy.Window)
	}

	if policy.Failover == FailLocal && s.tokenBucket == nil {
		s.tokenBucket = newTokenBucketLimiter(s.maxLocalKeys, policy.refillRate(), policy.Burst)
	}

	return s
}

// Allow evaluates key against the service's policy, applying the
// configured failover mode if the backing store errors, and publishes a
// SignalAllowed or SignalBlocked event before returning. The bucket is
// stored under "policy:key", so policies sharing a store never share
// counters.
func (s *Service) Allow(ctx context.Context, key string) Decision {
	decision := s.evaluate(ctx, s.policy.Name+":"+key)
	s.publish(key, decision)
	return decision
}

func (s *Service) evaluate(ctx context.Context, key string) Decision {
	if s.policy.Algorithm == TokenBucket {
		return s.tokenBucket.allow(key)
	}

	var (
		decision Decision
		err      error
	)
	switch s.policy.Algorithm {
	case SlidingWindow:
		decision, err = s.window.allow(ctx, key)
	case Quota:
		decision, err = s.quota.allow(ctx, key)
	}
	if err == nil {
		return decision
	}

	switch s.policy.Failover {
	case FailClosed:
		// Denied with a short, fixed backoff: the store may be back by then.
		return Decision{Allowed: false, RetryAfter: time.Second, Degraded: true, Failover: FailClosed}
	case FailLocal:
		d := s.tokenBucket.allow(key)
		d.Degraded = true
		d.Failover = FailLocal
		return d
	default:
		return Decision{Allowed: true, Degraded: true, Failover: FailOpen}
	}
}

func (s *Service) publish(key string, decision Decision) {
	if s.hub == nil {
		return
	}
	signal := SignalAllowed
	if !decision.Allowed {
		signal = SignalBlocked
	}
	s.hub.Publish(signalhub.Event{
		Signal: signal,
		Sender: s.policy.Name,
		At:     time.Now(),
		Payload: Evaluation{
			Policy:   s.policy.Name,
			Strategy: s.policy.Algorithm,
			Key:      key,
			Decision: decision,
		},
	})
}

// PolicyName returns the name of the policy this service evaluates,
// identifying which policy produced a Chain's blocking outcome.
func (s *Service) PolicyName() string { return s.policy.Name }
