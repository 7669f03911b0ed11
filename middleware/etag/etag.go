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

// Package etag stamps successful GET/HEAD responses with an entity tag
// derived from the buffered body and answers If-None-Match revalidation
// with 304, dropping the body the client already holds.
package etag

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/veloxa-dev/velox/router"
)

// Strategy selects how the entity tag is generated.
type Strategy int

const (
	// Disabled turns the middleware into a pass-through.
	Disabled Strategy = iota
	// Strong emits `"hash"` tags that assert byte-for-byte equality.
	Strong
	// Weak emits `W/"hash"` tags, announcing semantic rather than
	// byte-level equivalence.
	Weak
)

// StrategyFromString maps the "routing.etag.strategy" config value to a
// Strategy. Unknown values report an error rather than defaulting, so a
// typo in configuration fails at boot instead of silently disabling
// revalidation.
func StrategyFromString(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "disabled":
		return Disabled, nil
	case "strong":
		return Strong, nil
	case "weak":
		return Weak, nil
	default:
		return Disabled, fmt.Errorf("etag: unknown strategy %q", s)
	}
}

// Option configures New.
type Option func(*config)

type config struct {
	strategy Strategy
}

// WithStrategy sets the tag-generation strategy. Defaults to Strong.
func WithStrategy(s Strategy) Option {
	return func(cfg *config) { cfg.strategy = s }
}

// New returns middleware that runs the rest of the chain, then tags the
// buffered response. Only 200 responses to GET and HEAD with a non-empty
// body are tagged; handlers that set their own ETag win.
func New(opts ...Option) router.HandlerFunc {
	cfg := &config{strategy: Strong}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		c.Next()

		if cfg.strategy == Disabled {
			return
		}
		if m := c.Request.Method; m != http.MethodGet && m != http.MethodHead {
			return
		}
		if c.Response.Status() != http.StatusOK {
			return
		}
		if c.Response.Header().Get("ETag") != "" {
			return
		}
		body := c.Response.Body()
		if len(body) == 0 {
			return
		}

		sum := sha1.Sum(body)
		tag := `"` + hex.EncodeToString(sum[:]) + `"`
		if cfg.strategy == Weak {
			tag = "W/" + tag
		}
		c.Response.Header().Set("ETag", tag)

		if matches(c.Request.Header.Get("If-None-Match"), tag) {
			c.Response.ReplaceBody(http.StatusNotModified, nil)
		}
	}
}

// matches implements the If-None-Match comparison: a literal "*" matches
// anything, otherwise each listed tag is compared weakly (W/ prefixes
// stripped on both sides, per RFC 9110 §8.8.3.2).
func matches(header, tag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	tag = strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag {
			return true
		}
	}
	return false
}
