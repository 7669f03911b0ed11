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
	"net/http"
	"strings"
)

// RouteGroup scopes a path prefix and a middleware layer shared by every
// route and nested group registered under it. Middleware is applied
// outer-to-inner: router globals, then each enclosing group from
// outermost to innermost, then the route's own (spec §4.2).
type RouteGroup struct {
	router     *Router
	prefix     string
	name       string
	parentName string
	middleware [][]middlewareEntry
}

// Name assigns a name to the group, joined with any enclosing group's name
// with a dot, used for route metadata and observability.
func (g *RouteGroup) Name(name string) *RouteGroup {
	if g.parentName != "" {
		g.name = g.parentName + "." + name
	} else {
		g.name = name
	}
	return g
}

// Group nests a sub-group under this one, concatenating path prefixes and
// appending another middleware layer.
func (g *RouteGroup) Group(prefix string, entries ...any) *RouteGroup {
	return &RouteGroup{
		router:     g.router,
		prefix:     joinPrefix(g.prefix, prefix),
		parentName: g.name,
		middleware: append(append([][]middlewareEntry{}, g.middleware...), toEntries(entries)),
	}
}

func joinPrefix(a, b string) string {
	a = strings.TrimSuffix(a, "/")
	b = strings.TrimPrefix(b, "/")
	if b == "" {
		return a
	}
	return a + "/" + b
}

func (g *RouteGroup) layers(routeEntries []middlewareEntry) [][]middlewareEntry {
	layers := make([][]middlewareEntry, 0, len(g.middleware)+2)
	layers = append(layers, g.router.middleware)
	layers = append(layers, g.middleware...)
	layers = append(layers, routeEntries)
	return layers
}

func (g *RouteGroup) register(method, path string, handler HandlerFunc, entries ...any) *Route {
	full := joinPrefix(g.prefix, path)
	route := g.router.handle(method, full, g.layers(toEntries(entries)), g.name, handler, nil)
	return route
}

// GET registers a GET route under the group's prefix.
func (g *RouteGroup) GET(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodGet, path, handler, entries...)
}

// POST registers a POST route under the group's prefix.
func (g *RouteGroup) POST(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodPost, path, handler, entries...)
}

// PUT registers a PUT route under the group's prefix.
func (g *RouteGroup) PUT(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodPut, path, handler, entries...)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *RouteGroup) PATCH(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodPatch, path, handler, entries...)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *RouteGroup) DELETE(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodDelete, path, handler, entries...)
}

// OPTIONS registers an OPTIONS route under the group's prefix.
func (g *RouteGroup) OPTIONS(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodOptions, path, handler, entries...)
}

// HEAD registers a HEAD route under the group's prefix.
func (g *RouteGroup) HEAD(path string, handler HandlerFunc, entries ...any) *Route {
	return g.register(http.MethodHead, path, handler, entries...)
}

// Use appends middleware applied ahead of every route and nested group
// registered under g from this point forward.
func (g *RouteGroup) Use(entries ...any) {
	g.middleware = append(g.middleware, toEntries(entries))
}
