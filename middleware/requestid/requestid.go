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

// Package requestid stamps every request with a sortable, unique ID,
// reusing one supplied by the client when configured to, so the value is
// stable across a chain of proxies instead of being regenerated at every
// hop.
package requestid

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/veloxa-dev/velox/router"
)

type contextKey struct{}

// Option configures New.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// WithHeader sets the header checked for a client-supplied ID and used to
// echo the resolved one back.
func WithHeader(name string) Option {
	return func(c *config) { c.headerName = name }
}

// WithGenerator overrides how a new ID is produced when none is supplied.
func WithGenerator(fn func() string) Option {
	return func(c *config) { c.generator = fn }
}

// WithULID switches the generator to ULIDs, 26 characters instead of a
// UUID's 36, still time-ordered and lexicographically sortable.
func WithULID() Option {
	return func(c *config) { c.generator = generateULID }
}

// WithAllowClientID controls whether a client-supplied header value is
// trusted as-is. Disable this at a public ingress where the header isn't
// already stripped by a trusted proxy.
func WithAllowClientID(allow bool) Option {
	return func(c *config) { c.allowClientID = allow }
}

func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// New returns middleware that ensures every request carries a request ID:
// an existing one from the configured header when allowed, otherwise one
// freshly generated, echoed back on the response and stored in the
// request context for downstream middleware (logging, tracing) to read.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var id string
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Response.Header().Set(cfg.headerName, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), contextKey{}, id))
		c.Next()
	}
}

// Get retrieves the request ID stashed by New, or "" if none was set.
func Get(c *router.Context) string {
	id, _ := c.Request.Context().Value(contextKey{}).(string)
	return id
}
