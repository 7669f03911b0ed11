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

// Package bodylimit rejects requests whose body exceeds a configured
// size, before the body is fully read, so an oversized payload can't
// exhaust memory or bandwidth.
package bodylimit

import (
	"errors"
	"net/http"

	"github.com/veloxa-dev/velox/router"
)

// Option configures New.
type Option func(*config)

type config struct {
	maxSize      int64
	skipPaths    map[string]struct{}
	errorHandler func(c *router.Context, err error)
}

func defaultConfig() *config {
	return &config{
		skipPaths: make(map[string]struct{}),
		errorHandler: func(c *router.Context, err error) {
			c.Status(http.StatusRequestEntityTooLarge)
		},
	}
}

// WithMaxSize sets the maximum request body size in bytes. Required;
// New panics if it's never set.
func WithMaxSize(n int64) Option {
	return func(cfg *config) { cfg.maxSize = n }
}

// WithSkipPaths excludes specific request paths from the limit, e.g. a
// dedicated upload endpoint with its own larger cap.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}

// WithErrorHandler overrides the default 413 response.
func WithErrorHandler(fn func(c *router.Context, err error)) Option {
	return func(cfg *config) { cfg.errorHandler = fn }
}

// New returns middleware that wraps the request body in a size-limited
// reader, rejecting immediately on Content-Length and mid-stream once the
// configured cap is exceeded.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxSize <= 0 {
		panic("bodylimit: WithMaxSize is required")
	}

	return func(c *router.Context) {
		if _, skip := cfg.skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		if err := router.ApplyBodyLimit(c.Request, cfg.maxSize); err != nil {
			if errors.Is(err, router.ErrBodyTooLarge) {
				cfg.errorHandler(c, err)
				c.Abort()
				return
			}
			c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
