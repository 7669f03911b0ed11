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

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"gopkg.in/yaml.v3"
)

// HandlerFunc is the signature shared by route handlers and middleware.
// Middleware calls c.Next() to continue the chain; omitting the call
// short-circuits everything downstream.
type HandlerFunc func(*Context)

// Context is the per-request bundle handed to every handler in a chain. It
// is pooled and reset between requests (see pool.go) and must never be
// retained past the handler that received it.
//
// Context is NOT safe for concurrent use: it belongs to exactly one
// in-flight request, on exactly one goroutine, for the request's lifetime.
type Context struct {
	Request  *http.Request
	Response *Response

	router   *Router
	handlers []HandlerFunc
	index    int32

	paramCount  int32
	paramKeys   [8]string
	paramValues [8]string
	Params      map[string]string

	route        *Route // matched route, nil on 404
	routePattern string
	attrs        map[string]any
	aborted      bool
	errors       []error
	body         *bodyState

	overrideIP string
	logger     *slog.Logger

	// onMatch, when set by the engine, fires once the matcher has settled
	// the request's route (c.route non-nil) or its absence (nil), before
	// any handler runs, so RouteMatched/RouteNotFound precede handling.
	onMatch func(*Context)
}

func (c *Context) notifyMatch() {
	if c.onMatch != nil {
		c.onMatch(c)
	}
}

// NewContext constructs a standalone Context outside of the router's pool,
// primarily useful in tests.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request:  r,
		Response: newResponse(w),
		index:    -1,
	}
}

// Next invokes the next handler in the chain. Middleware that doesn't call
// Next short-circuits the remaining chain (spec: "the composer builds a
// tail-to-head closure").
func (c *Context) Next() {
	c.index++
	if c.index >= int32(len(c.handlers)) || c.aborted {
		return
	}
	if err := c.Request.Context().Err(); err != nil {
		return
	}
	c.handlers[c.index](c)
}

// Abort stops the chain: handlers later than the current one will not run.
// Handlers that already ran are unaffected.
func (c *Context) Abort() { c.aborted = true }

// IsAborted reports whether Abort has been called on this request.
func (c *Context) IsAborted() bool { return c.aborted }

// Param returns a captured path parameter by name, or "" if absent. Missing
// optional parameters and unmatched names both return "".
func (c *Context) Param(key string) string {
	for i := int32(0); i < c.paramCount; i++ {
		if c.paramKeys[i] == key {
			return c.paramValues[i]
		}
	}
	if c.Params != nil {
		return c.Params[key]
	}
	return ""
}

// setParam records a parameter captured during matching; index-based so the
// pooled arrays can be filled without allocating until overflow.
func (c *Context) setParam(key, value string) {
	if c.paramCount < int32(len(c.paramKeys)) {
		c.paramKeys[c.paramCount] = key
		c.paramValues[c.paramCount] = value
		c.paramCount++
		return
	}
	if c.Params == nil {
		c.Params = make(map[string]string, 4)
	}
	c.Params[key] = value
}

// ParamInt parses a path parameter as an int.
func (c *Context) ParamInt(name string) (int, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return v, nil
}

// ParamFloat64 parses a path parameter as a float64.
func (c *Context) ParamFloat64(name string) (float64, error) {
	s := c.Param(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%w)", ErrParamInvalid, name, err)
	}
	return v, nil
}

// Query returns a URL query parameter.
func (c *Context) Query(key string) string { return c.Request.URL.Query().Get(key) }

// QueryDefault returns a URL query parameter or a default when absent.
func (c *Context) QueryDefault(key, def string) string {
	if v := c.Request.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

// Set stores a value in the per-request attribute bag.
func (c *Context) Set(key string, value any) {
	if c.attrs == nil {
		c.attrs = make(map[string]any, 4)
	}
	c.attrs[key] = value
}

// Get retrieves a value from the per-request attribute bag.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// RoutePattern returns the matched route's original pattern, or "" on 404.
func (c *Context) RoutePattern() string { return c.routePattern }

// Route returns the matched Route, or nil on 404/405.
func (c *Context) Route() *Route { return c.route }

// Logger returns the request-scoped logger, falling back to slog.Default().
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Error records a handler error for later inspection (e.g. by a logging
// middleware installed after the handler in the chain). It does not write a
// response or abort the chain.
func (c *Context) Error(err error) {
	if err == nil {
		return
	}
	c.errors = append(c.errors, err)
}

// Errors returns all errors collected via Error during this request.
func (c *Context) Errors() []error { return c.errors }

// JSON encodes obj as JSON and writes it with the given status code.
func (c *Context) JSON(code int, obj any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("router: JSON encoding failed for %T: %w", obj, err)
	}
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(buf.Bytes())
	return err
}

// YAML encodes obj as YAML and writes it with the given status code.
func (c *Context) YAML(code int, obj any) error {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("router: YAML encoding failed for %T: %w", obj, err)
	}
	c.Response.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err = c.Response.Write(out)
	return err
}

// String writes a plain-text response.
func (c *Context) String(code int, value string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write([]byte(value))
	return err
}

// Data writes raw bytes with an explicit content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	if contentType != "" {
		c.Response.Header().Set("Content-Type", contentType)
	}
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(data)
	return err
}

// NoContent writes a 204 with no body.
func (c *Context) NoContent() { c.Response.WriteHeader(http.StatusNoContent) }

// Status sets the response status without writing a body.
func (c *Context) Status(code int) { c.Response.WriteHeader(code) }

// Header sets a response header.
func (c *Context) Header(key, value string) { c.Response.Header().Set(key, value) }

// Redirect sets Location and status, then finalizes the response (spec §4.6).
func (c *Context) Redirect(code int, location string) {
	c.Response.Header().Set("Location", location)
	c.Response.WriteHeader(code)
}

// RequestContext returns the request's context.Context, honoring any
// request-scoped timeout or cancellation attached by middleware.
func (c *Context) RequestContext() context.Context { return c.Request.Context() }

// ClientIP resolves the client address per §4.6: explicit override, then
// trusted platform header, then trusted-proxy-gated forwarded headers,
// then the transport remote address.
func (c *Context) ClientIP() string {
	return resolveClientIP(c)
}
