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

// Package ratelimit adapts a ratelimit.Chain of compiled policies into
// router middleware: it builds a RequestInfo from the incoming request,
// evaluates the chain, and either continues the handler chain or writes a
// 429 with standard rate-limit headers.
package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/veloxa-dev/velox/ratelimit"
	"github.com/veloxa-dev/velox/router"
)

// Option configures New.
type Option func(*config)

type config struct {
	chain           *ratelimit.Chain
	onLimitExceeded func(c *router.Context, outcome ratelimit.Outcome)
}

// WithChain sets the compiled policy chain to evaluate. Required.
func WithChain(chain *ratelimit.Chain) Option {
	return func(cfg *config) { cfg.chain = chain }
}

// WithOnLimitExceeded overrides the default 429 response.
func WithOnLimitExceeded(fn func(c *router.Context, outcome ratelimit.Outcome)) Option {
	return func(cfg *config) { cfg.onLimitExceeded = fn }
}

func defaultOnLimitExceeded(c *router.Context, outcome ratelimit.Outcome) {
	// Every 429 carries Retry-After; a decision without one (a bucket so
	// saturated the delay rounds to zero) still advertises a 1s backoff.
	seconds := int(outcome.Decision.RetryAfter.Seconds()) + 1
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.Status(http.StatusTooManyRequests)
}

// New returns middleware that evaluates every request against cfg's policy
// chain (spec §4.3), setting X-RateLimit-Remaining on allowed requests and
// rejecting blocked ones with 429 + Retry-After.
func New(opts ...Option) router.HandlerFunc {
	cfg := &config{onLimitExceeded: defaultOnLimitExceeded}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.chain == nil {
		panic("ratelimit: WithChain is required")
	}

	return func(c *router.Context) {
		info := ratelimit.RequestInfo{
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			Header:   c.Request.Header,
			ClientIP: c.ClientIP(),
		}

		outcome := cfg.chain.Evaluate(c.RequestContext(), info)
		if outcome.Blocked {
			cfg.onLimitExceeded(c, outcome)
			c.Abort()
			return
		}

		if outcome.Applied {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(outcome.Decision.Remaining, 10))
		}
		c.Next()
	}
}
