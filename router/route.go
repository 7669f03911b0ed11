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

	"github.com/veloxa-dev/velox/router/compiler"
)

// Route is the compiled record produced by route registration: method,
// original path pattern, compiled matcher, handler, optional name, an
// ordered middleware list (engine ⊕ router ⊕ groups ⊕ route, resolved at
// Freeze), and exclusions applied against that resolved list.
//
// A Route is immutable after Freeze(); mutating methods (SetName,
// WithoutMiddleware, Where) all panic if called afterward.
type Route struct {
	method  string
	path    string
	pattern *compiler.Pattern
	handler HandlerFunc
	name    string
	group   string // dotted chain of enclosing group names, for URLFor/metrics

	middleware []middlewareEntry // route-level only; resolved chain lives on compiledHandlers
	exclusions []middlewareExclusion

	userConstraints map[string]string

	compiledHandlers []HandlerFunc // engine ⊕ router ⊕ groups ⊕ route, minus exclusions
	router           *Router
}

// Method returns the route's HTTP method.
func (r *Route) Method() string { return r.method }

// Path returns the route's original path pattern.
func (r *Route) Path() string { return r.path }

// Name returns the route's registered name, or "" if unnamed.
func (r *Route) Name() string { return r.name }

// SetName assigns a name to the route, used by URLFor and observability.
// Names must be unique across the final route table; the duplicate is
// caught at Freeze().
func (r *Route) SetName(name string) *Route {
	r.panicIfFrozen()
	r.name = name
	return r
}

// WithoutMiddleware excludes middleware from this route's final composed
// chain. Entries may be either a name (string, resolved against the
// MiddlewareRegistry) or a HandlerFunc instance; exclusion happens once,
// after resolution, in a single top-down pass over the assembled chain
// (spec §4.2).
func (r *Route) WithoutMiddleware(entries ...any) *Route {
	r.panicIfFrozen()
	for _, e := range entries {
		switch v := e.(type) {
		case string:
			r.exclusions = append(r.exclusions, middlewareExclusion{name: v})
		case HandlerFunc:
			r.exclusions = append(r.exclusions, middlewareExclusion{instance: v})
		}
	}
	return r
}

// Where attaches a user-supplied regex constraint to a named path
// parameter, narrowing whatever pattern its placeholder type implies, and
// recompiles the route's matcher immediately. Must be called before the
// router is frozen.
func (r *Route) Where(param, pattern string) *Route {
	r.panicIfFrozen()
	if r.userConstraints == nil {
		r.userConstraints = make(map[string]string, 2)
	}
	r.userConstraints[param] = pattern
	if err := r.recompile(); err != nil {
		panic(fmt.Sprintf("router: recompiling %s %s after Where(%q): %v", r.method, r.path, param, err))
	}
	return r
}

func (r *Route) recompile() error {
	compiled, err := compiler.Compile(r.path, r.userConstraints)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *Route) panicIfFrozen() {
	if r.router != nil && r.router.Frozen() {
		panic("router: cannot modify a route after Freeze()")
	}
}

// RouteInfo is a read-only snapshot of a registered route, returned by
// Router.Routes() for diagnostics, OpenAPI export, etc.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
	Group  string
}
