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
	"fmt"
	"strings"

	"github.com/veloxa-dev/velox/config"
)

// ChainFromConfig compiles the "rate_limit" config section into a Chain of
// policies backed by store, in declaration order. A disabled section
// yields an empty chain that allows everything. Invalid policy values
// (zero limits, missing windows, unknown algorithm/failover/identity
// strings) are boot-time errors, never silently defaulted.
func ChainFromConfig(sec config.RateLimitSection, store Repository, opts ...ServiceOption) (*Chain, error) {
	if !sec.Enabled {
		return NewChain(), nil
	}

	policies := make([]CompiledPolicy, 0, len(sec.Policies))
	for _, p := range sec.Policies {
		compiled, err := compilePolicy(p, sec.Failover, store, opts)
		if err != nil {
			return nil, fmt.Errorf("ratelimit: policy %q: %w", p.Name, err)
		}
		policies = append(policies, compiled)
	}
	return NewChain(policies...), nil
}

func compilePolicy(p config.RateLimitPolicySection, defaultFailover string, store Repository, opts []ServiceOption) (CompiledPolicy, error) {
	if p.Limit < 1 {
		return CompiledPolicy{}, fmt.Errorf("limit must be >= 1, got %d", p.Limit)
	}

	algorithm, err := algorithmFromString(p.Algorithm)
	if err != nil {
		return CompiledPolicy{}, err
	}
	if algorithm != TokenBucket && p.Window <= 0 {
		return CompiledPolicy{}, fmt.Errorf("window must be > 0, got %s", p.Window)
	}

	failoverStr := p.Failover
	if failoverStr == "" {
		failoverStr = defaultFailover
	}
	failover, err := failoverFromString(failoverStr)
	if err != nil {
		return CompiledPolicy{}, err
	}

	identity, err := identityFromString(p.Identity)
	if err != nil {
		return CompiledPolicy{}, err
	}

	burst := p.Burst
	if burst < 1 {
		burst = p.Limit
	}

	service := New(Policy{
		Name:           p.Name,
		Algorithm:      algorithm,
		Limit:          p.Limit,
		Burst:          burst,
		RefillInterval: p.RefillInterval,
		Window:         p.Window,
		Failover:       failover,
	}, store, opts...)

	return CompiledPolicy{
		Matcher:  NewRequestMatcher(p.Method, p.Path),
		Identity: identity,
		Service:  service,
	}, nil
}

func algorithmFromString(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "", "token_bucket":
		return TokenBucket, nil
	case "sliding_window":
		return SlidingWindow, nil
	case "quota":
		return Quota, nil
	default:
		return TokenBucket, fmt.Errorf("unknown algorithm %q", s)
	}
}

func failoverFromString(s string) (FailoverMode, error) {
	switch strings.ToLower(s) {
	case "", "allow":
		return FailOpen, nil
	case "block":
		return FailClosed, nil
	case "local":
		return FailLocal, nil
	default:
		return FailOpen, fmt.Errorf("unknown failover mode %q", s)
	}
}

// identityFromString parses the "identity" policy key: "ip" keys buckets
// on the resolved client IP, "header:<Name>" on a request header value.
func identityFromString(s string) (IdentityResolver, error) {
	switch {
	case s == "" || strings.EqualFold(s, "ip"):
		return ResolveByClientIP(), nil
	case strings.HasPrefix(strings.ToLower(s), "header:"):
		name := s[len("header:"):]
		if name == "" {
			return nil, fmt.Errorf("identity %q names no header", s)
		}
		return ResolveByHeader(name), nil
	default:
		return nil, fmt.Errorf("unknown identity resolver %q", s)
	}
}
