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
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/veloxa-dev/velox/router/compiler"
)

// Option configures a Router at construction time.
type Option func(*Router)

// Router holds the full route table for one method-dispatch surface:
// static routes behind a bloom filter + map fast path, dynamic routes as
// an ordered list of compiled patterns tried top-to-bottom (spec §4.1 —
// "first registered, first tried"), middleware resolution, and the
// context pool every request borrows from.
type Router struct {
	mu sync.RWMutex

	static  map[string]map[string]*Route // method -> literal path -> route
	dynamic map[string][]*Route          // method -> ordered compiled routes
	bloom   map[string]*compiler.BloomFilter

	names map[string]*Route

	middleware []middlewareEntry
	registry   *MiddlewareRegistry

	realip *realIPConfig
	pool   *contextPool

	notFound         HandlerFunc
	methodNotAllowed HandlerFunc

	// Global middleware also wraps the 404/405 terminals, so a logging or
	// CORS middleware can decorate those responses too; composed at Freeze.
	compiledNotFound         []HandlerFunc
	compiledMethodNotAllowed []HandlerFunc

	redirectTrailingSlash  bool
	handleMethodNotAllowed bool
	defaultOptions         bool

	frozen   bool
	freezeMu sync.Once
}

// New constructs a Router. Routes may be registered until Freeze is called
// (directly, or implicitly by the first call to ServeHTTP).
func New(opts ...Option) *Router {
	r := &Router{
		static:                 make(map[string]map[string]*Route),
		dynamic:                make(map[string][]*Route),
		bloom:                  make(map[string]*compiler.BloomFilter),
		names:                  make(map[string]*Route),
		registry:               NewMiddlewareRegistry(),
		pool:                   newContextPool(),
		redirectTrailingSlash:  true,
		handleMethodNotAllowed: true,
	}
	r.notFound = func(c *Context) { c.Status(http.StatusNotFound) }
	r.methodNotAllowed = func(c *Context) { c.Status(http.StatusMethodNotAllowed) }

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithMiddlewareRegistry replaces the default, empty MiddlewareRegistry.
func WithMiddlewareRegistry(reg *MiddlewareRegistry) Option {
	return func(r *Router) { r.registry = reg }
}

// WithRedirectTrailingSlash toggles the default trailing-slash redirect
// behavior (spec §4.1: on for GET via 301, 307 for other methods).
func WithRedirectTrailingSlash(enabled bool) Option {
	return func(r *Router) { r.redirectTrailingSlash = enabled }
}

// WithHandleMethodNotAllowed toggles the 405 + Allow-header response when
// a path is routable under a different method (spec §4.1 step 2). When
// disabled, such requests fall through to 404.
func WithHandleMethodNotAllowed(enabled bool) Option {
	return func(r *Router) { r.handleMethodNotAllowed = enabled }
}

// WithDefaultOptions auto-serves OPTIONS requests for any routable path
// with a 204 and an Allow header listing the registered methods, unless an
// explicit OPTIONS route matches first.
func WithDefaultOptions(enabled bool) Option {
	return func(r *Router) { r.defaultOptions = enabled }
}

// WithNotFoundHandler overrides the default 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(r *Router) { r.notFound = h }
}

// WithMethodNotAllowedHandler overrides the default 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(r *Router) { r.methodNotAllowed = h }
}

// Frozen reports whether the route table has been finalized.
func (r *Router) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Use appends global middleware, applied ahead of every group and route
// middleware on every route in the table.
func (r *Router) Use(entries ...any) {
	r.panicIfFrozen()
	r.middleware = append(r.middleware, toEntries(entries)...)
}

// RegisterMiddleware names a middleware handler so it can be referenced by
// string from Use, Group, or WithoutMiddleware anywhere in the tree.
func (r *Router) RegisterMiddleware(name string, h HandlerFunc) {
	r.registry.Register(name, h)
}

// Group returns a RouteGroup rooted at prefix, inheriting the router's
// middleware ahead of whatever the group itself adds.
func (r *Router) Group(prefix string, entries ...any) *RouteGroup {
	return &RouteGroup{
		router:     r,
		prefix:     prefix,
		middleware: [][]middlewareEntry{toEntries(entries)},
	}
}

// Mount copies every route registered on sub into r under prefix, with
// entries interposed between r's global middleware and whatever middleware
// each route carried on sub. Both routers must still be unfrozen; conflicts
// with routes already registered on r surface the same way duplicate
// registration does.
func (r *Router) Mount(prefix string, sub *Router, entries ...any) {
	r.panicIfFrozen()
	if sub == r {
		panic("router: cannot mount a router onto itself")
	}
	mountLayer := toEntries(entries)

	sub.mu.RLock()
	defer sub.mu.RUnlock()

	copyRoute := func(route *Route) {
		mounted := r.handle(route.method, joinPrefix(prefix, route.path),
			[][]middlewareEntry{r.middleware, mountLayer, route.middleware},
			route.group, route.handler, route.userConstraints)
		mounted.name = route.name
		mounted.exclusions = append(mounted.exclusions, route.exclusions...)
	}
	for _, byPath := range sub.static {
		for _, route := range byPath {
			copyRoute(route)
		}
	}
	for _, routes := range sub.dynamic {
		for _, route := range routes {
			copyRoute(route)
		}
	}
}

func toEntries(in []any) []middlewareEntry {
	out := make([]middlewareEntry, 0, len(in))
	for _, e := range in {
		switch v := e.(type) {
		case string:
			out = append(out, middlewareEntry{name: v})
		case HandlerFunc:
			out = append(out, middlewareEntry{instance: v})
		case func(*Context):
			out = append(out, middlewareEntry{instance: HandlerFunc(v)})
		}
	}
	return out
}

// handle registers a route. group is the dotted group-name chain ("" at
// router root) and layers are the middleware lists applying outer-to-inner
// (router Use, then each enclosing group, in order).
func (r *Router) handle(method, path string, layers [][]middlewareEntry, group string, handler HandlerFunc, constraints map[string]string) *Route {
	r.panicIfFrozen()
	if handler == nil {
		panic(ErrNilHandler)
	}

	pattern, err := compiler.Compile(path, constraints)
	if err != nil {
		panic(fmt.Sprintf("router: invalid route pattern %q: %v", path, err))
	}

	route := &Route{
		method:          method,
		path:            path,
		pattern:         pattern,
		handler:         handler,
		group:           group,
		userConstraints: constraints,
		router:          r,
	}
	// Flatten the layer list now; Freeze composes the final chain from
	// route.middleware, minus whatever WithoutMiddleware adds to
	// route.exclusions in the meantime.
	for _, layer := range layers {
		route.middleware = append(route.middleware, layer...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pattern.Static {
		if r.static[method] == nil {
			r.static[method] = make(map[string]*Route)
		}
		if existing, ok := r.static[method][pattern.Literal]; ok {
			panic(fmt.Errorf("%w: %s %s conflicts with %s %s", ErrRouteConflict, method, path, existing.method, existing.path))
		}
		r.static[method][pattern.Literal] = route
	} else {
		r.dynamic[method] = append(r.dynamic[method], route)
	}

	return route
}

func (r *Router) registerName(route *Route) error {
	if route.name == "" {
		return nil
	}
	if existing, ok := r.names[route.name]; ok && existing != route {
		return fmt.Errorf("%w: %q used by both %s %s and %s %s", ErrRouteNameConflict, route.name, existing.method, existing.path, route.method, route.path)
	}
	r.names[route.name] = route
	return nil
}

// GET registers a GET route.
func (r *Router) GET(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodGet, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// POST registers a POST route.
func (r *Router) POST(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodPost, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// PUT registers a PUT route.
func (r *Router) PUT(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodPut, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodPatch, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodDelete, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// OPTIONS registers an OPTIONS route.
func (r *Router) OPTIONS(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodOptions, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(path string, handler HandlerFunc, entries ...any) *Route {
	return r.handle(http.MethodHead, path, [][]middlewareEntry{r.middleware, toEntries(entries)}, "", handler, nil)
}

// Routes returns a snapshot of every registered route, for diagnostics.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteInfo, 0, 32)
	for method, byPath := range r.static {
		for _, route := range byPath {
			out = append(out, RouteInfo{Method: method, Path: route.path, Name: route.name, Group: route.group})
		}
	}
	for method, routes := range r.dynamic {
		for _, route := range routes {
			out = append(out, RouteInfo{Method: method, Path: route.path, Name: route.name, Group: route.group})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) panicIfFrozen() {
	r.mu.RLock()
	frozen := r.frozen
	r.mu.RUnlock()
	if frozen {
		panic(ErrRouterFrozen)
	}
}

// Freeze compiles every route's final middleware chain and builds the
// per-method bloom filters over static paths. Safe to call more than once;
// only the first call does work (spec: "compiled once, guarded by
// sync.Once, re-entered safely on concurrent first requests").
func (r *Router) Freeze() error {
	var ferr error
	r.freezeMu.Do(func() {
		ferr = r.doFreeze()
	})
	return ferr
}

func (r *Router) doFreeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, byPath := range r.static {
		for _, route := range byPath {
			if err := r.registerName(route); err != nil {
				return err
			}
		}
	}
	for _, routes := range r.dynamic {
		for _, route := range routes {
			if err := r.registerName(route); err != nil {
				return err
			}
		}
	}

	for method, byPath := range r.static {
		filter := compiler.NewBloomFilter(optimalBloomSize(len(byPath)), 4)
		for literal, route := range byPath {
			filter.Add([]byte(literal))
			if err := r.compileRouteHandlers(route); err != nil {
				return err
			}
		}
		r.bloom[method] = filter
	}
	for _, routes := range r.dynamic {
		for _, route := range routes {
			if err := r.compileRouteHandlers(route); err != nil {
				return err
			}
		}
	}

	globals := [][]middlewareEntry{r.middleware}
	notFoundChain, err := composeChain(r.registry, globals, nil, r.notFound)
	if err != nil {
		return fmt.Errorf("router: composing 404 chain: %w", err)
	}
	r.compiledNotFound = notFoundChain
	methodNotAllowedChain, err := composeChain(r.registry, globals, nil, r.methodNotAllowed)
	if err != nil {
		return fmt.Errorf("router: composing 405 chain: %w", err)
	}
	r.compiledMethodNotAllowed = methodNotAllowedChain

	r.frozen = true
	return nil
}

func (r *Router) compileRouteHandlers(route *Route) error {
	layers := [][]middlewareEntry{route.middleware}
	chain, err := composeChain(r.registry, layers, route.exclusions, route.handler)
	if err != nil {
		return fmt.Errorf("router: composing middleware for %s %s: %w", route.method, route.path, err)
	}
	route.compiledHandlers = chain
	return nil
}

func optimalBloomSize(n int) uint64 {
	if n < 16 {
		return 64
	}
	return uint64(n) * 8
}

// ServeHTTP implements http.Handler. The router is frozen on first use if
// not already frozen explicitly.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.Frozen() {
		if err := r.Freeze(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	c := r.pool.get()
	c.Request = req
	c.Response = newResponse(w)
	c.router = r

	r.dispatch(c)

	c.Response.Flush()
	r.pool.put(c)
}
