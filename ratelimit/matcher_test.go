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
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestMatcherMethodWildcardMatchesAnyMethod(t *testing.T) {
	m := NewRequestMatcher("*", "/api/*")
	assert.True(t, m.Matches(RequestInfo{Method: "DELETE", Path: "/api/orders/1"}))
}

func TestRequestMatcherMethodIsCaseInsensitive(t *testing.T) {
	m := NewRequestMatcher("post", "/login")
	assert.True(t, m.Matches(RequestInfo{Method: "POST", Path: "/login"}))
	assert.False(t, m.Matches(RequestInfo{Method: "GET", Path: "/login"}))
}

func TestRequestMatcherGlobMatchesSubtree(t *testing.T) {
	m := NewRequestMatcher("", "/admin/*")
	assert.True(t, m.Matches(RequestInfo{Method: "GET", Path: "/admin/users/42"}))
	assert.False(t, m.Matches(RequestInfo{Method: "GET", Path: "/public/users"}))
}

func TestRequestMatcherEmptyPatternMatchesEverything(t *testing.T) {
	m := NewRequestMatcher("", "")
	assert.True(t, m.Matches(RequestInfo{Method: "GET", Path: "/anything"}))
}

func TestResolveByClientIPSkipsWhenUnresolved(t *testing.T) {
	resolve := ResolveByClientIP()
	_, ok := resolve(RequestInfo{})
	assert.False(t, ok)

	key, ok := resolve(RequestInfo{ClientIP: "198.51.100.1"})
	require := assert.New(t)
	require.True(ok)
	require.Equal("198.51.100.1", key)
}

func TestResolveByHeaderSkipsWhenMissing(t *testing.T) {
	resolve := ResolveByHeader("X-Api-Key")
	h := http.Header{}
	_, ok := resolve(RequestInfo{Header: h})
	assert.False(t, ok)

	h.Set("X-Api-Key", "abc123")
	key, ok := resolve(RequestInfo{Header: h})
	assert.True(t, ok)
	assert.Equal(t, "abc123", key)
}

func TestChainShortCircuitsOnFirstBlock(t *testing.T) {
	permissive := New(Policy{Name: "permissive", Algorithm: Quota, Limit: 100, Window: time.Minute}, NewMemoryStore(16))
	strict := New(Policy{Name: "strict", Algorithm: Quota, Limit: 1, Window: time.Minute}, NewMemoryStore(16))
	neverReached := New(Policy{Name: "never", Algorithm: Quota, Limit: 1, Window: time.Minute}, NewMemoryStore(16))

	chain := NewChain(
		CompiledPolicy{Matcher: NewRequestMatcher("", "/api/*"), Identity: ResolveByClientIP(), Service: permissive},
		CompiledPolicy{Matcher: NewRequestMatcher("", "/api/*"), Identity: ResolveByClientIP(), Service: strict},
		CompiledPolicy{Matcher: NewRequestMatcher("", "/api/*"), Identity: ResolveByClientIP(), Service: neverReached},
	)

	info := RequestInfo{Method: "GET", Path: "/api/orders", ClientIP: "198.51.100.1"}
	first := chain.Evaluate(context.Background(), info)
	assert.True(t, first.Decision.Allowed)

	second := chain.Evaluate(context.Background(), info)
	assert.False(t, second.Decision.Allowed)
	assert.Equal(t, "strict", second.Policy)
	assert.True(t, second.Blocked)
}

func TestChainSkipsPoliciesWithNonMatchingRequest(t *testing.T) {
	strict := New(Policy{Name: "strict", Algorithm: Quota, Limit: 0, Window: time.Minute}, NewMemoryStore(16))
	chain := NewChain(
		CompiledPolicy{Matcher: NewRequestMatcher("", "/admin/*"), Identity: ResolveByClientIP(), Service: strict},
	)

	outcome := chain.Evaluate(context.Background(), RequestInfo{Method: "GET", Path: "/public", ClientIP: "198.51.100.1"})
	assert.True(t, outcome.Decision.Allowed)
	assert.False(t, outcome.Blocked)
}

func TestChainSkipsPolicyWithUnresolvableIdentity(t *testing.T) {
	strict := New(Policy{Name: "strict", Algorithm: Quota, Limit: 0, Window: time.Minute}, NewMemoryStore(16))
	chain := NewChain(
		CompiledPolicy{Matcher: NewRequestMatcher("", "/api/*"), Identity: ResolveByHeader("X-Api-Key"), Service: strict},
	)

	outcome := chain.Evaluate(context.Background(), RequestInfo{Method: "GET", Path: "/api/orders", Header: http.Header{}})
	assert.True(t, outcome.Decision.Allowed, "policy should be skipped entirely when identity can't be resolved")
}

func TestChainWithNoPoliciesAllows(t *testing.T) {
	chain := NewChain()
	outcome := chain.Evaluate(context.Background(), RequestInfo{Method: "GET", Path: "/anything"})
	assert.True(t, outcome.Decision.Allowed)
}
