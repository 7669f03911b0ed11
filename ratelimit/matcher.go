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
	"regexp"
	"strings"
)

// RequestInfo is the minimal request view policy matching and identity
// resolution need. It's a plain struct rather than an interface so this
// package stays decoupled from any particular HTTP framework type; the
// router-facing middleware package is responsible for populating one per
// request.
type RequestInfo struct {
	Method   string
	Path     string
	Header   http.Header
	ClientIP string
}

// RequestMatcher decides whether a Policy applies to a request: method is
// "*" or an exact (case-insensitive) match, and Pattern is a glob where
// "*" matches any run of path segments (spec §4.3).
type RequestMatcher struct {
	Method  string
	Pattern string

	compiled *regexp.Regexp
}

// NewRequestMatcher compiles a RequestMatcher. method == "" is treated the
// same as "*" (applies to every method).
func NewRequestMatcher(method, pattern string) RequestMatcher {
	return RequestMatcher{Method: method, Pattern: pattern, compiled: compileGlob(pattern)}
}

// Matches reports whether info satisfies the matcher.
func (m RequestMatcher) Matches(info RequestInfo) bool {
	if m.Method != "" && m.Method != "*" && !strings.EqualFold(m.Method, info.Method) {
		return false
	}
	if m.compiled == nil {
		return true
	}
	return m.compiled.MatchString(info.Path)
}

// compileGlob turns a "*"-glob into an anchored regular expression; "*"
// matches any run of characters (including "/"), so a single "*" at the
// end of a pattern covers an entire subtree.
func compileGlob(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	var b strings.Builder
	b.WriteByte('^')
	for _, part := range strings.Split(pattern, "*") {
		if part != "" {
			b.WriteString(regexp.QuoteMeta(part))
		}
		b.WriteString(".*")
	}
	s := b.String()
	s = strings.TrimSuffix(s, ".*") + "$"
	return regexp.MustCompile(s)
}

// IdentityResolver derives the bucket identity for a request, or reports
// false when the identity is unresolvable — in which case the policy is
// skipped for this request without error (spec §4.3).
type IdentityResolver func(info RequestInfo) (key string, ok bool)

// ResolveByClientIP keys on the request's resolved client IP.
func ResolveByClientIP() IdentityResolver {
	return func(info RequestInfo) (string, bool) {
		if info.ClientIP == "" {
			return "", false
		}
		return info.ClientIP, true
	}
}

// ResolveByHeader keys on the value of a named request header, e.g. an API
// key or authenticated user ID propagated by an upstream auth layer.
func ResolveByHeader(name string) IdentityResolver {
	return func(info RequestInfo) (string, bool) {
		v := info.Header.Get(name)
		if v == "" {
			return "", false
		}
		return v, true
	}
}

// CompiledPolicy pairs one Policy's request matcher and identity resolver
// with the Service that evaluates it.
type CompiledPolicy struct {
	Matcher  RequestMatcher
	Identity IdentityResolver
	Service  *Service
}

// Chain evaluates an ordered list of policies against one request,
// bucket-keyed as "policy:identity" (see Service), short-circuiting on the
// first blocked outcome; allowed outcomes accumulate and the iteration
// continues (spec §4.3).
type Chain struct {
	policies []CompiledPolicy
}

// NewChain builds a Chain from compiled policies, tried in the given
// order — the same order they were declared in configuration.
func NewChain(policies ...CompiledPolicy) *Chain {
	return &Chain{policies: policies}
}

// Outcome is the result of evaluating a Chain against one request.
// Applied reports whether any policy actually evaluated the request; when
// false, Decision is a synthetic allow and carries no meaningful Remaining.
type Outcome struct {
	Policy   string
	Decision Decision
	Blocked  bool
	Applied  bool
}

// Evaluate runs every applicable policy in declaration order. A policy
// whose matcher doesn't apply, or whose identity is unresolvable, is
// skipped without affecting the outcome. The first blocking decision wins;
// if every applicable policy allows the request, the outcome carries the
// tightest of the allowed decisions (fewest remaining), since that's the
// one the client will hit first.
func (c *Chain) Evaluate(ctx context.Context, info RequestInfo) Outcome {
	out := Outcome{Decision: Decision{Allowed: true}}
	for _, p := range c.policies {
		if !p.Matcher.Matches(info) {
			continue
		}
		key, ok := p.Identity(info)
		if !ok {
			continue
		}
		decision := p.Service.Allow(ctx, key)
		if !decision.Allowed {
			return Outcome{Policy: p.Service.PolicyName(), Decision: decision, Blocked: true, Applied: true}
		}
		if !out.Applied || decision.Remaining < out.Decision.Remaining {
			out.Policy = p.Service.PolicyName()
			out.Decision = decision
		}
		out.Applied = true
	}
	return out
}
