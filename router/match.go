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
	"sort"
	"strings"
)

// dispatch resolves the incoming request to a route and runs its compiled
// handler chain, or falls through to the redirect/405/404 paths, in the
// order spec §4.1 prescribes: exact match, trailing-slash retry,
// method-not-allowed, not-found.
func (r *Router) dispatch(c *Context) {
	path := c.Request.URL.Path
	if containsDotDot(path) {
		r.serveNotFound(c)
		return
	}

	method := c.Request.Method

	if route, ok := r.matchStatic(method, path); ok {
		r.serve(c, route, nil)
		return
	}
	if route, params, ok := r.matchDynamic(method, path); ok {
		r.serve(c, route, params)
		return
	}

	// The exact path didn't match; retry with the trailing slash trimmed
	// and redirect the client there if that form is routable. With the
	// redirect disabled, a trailing-slash miss stays a plain 404.
	if r.redirectTrailingSlash && strings.HasSuffix(path, "/") && len(path) > 1 {
		trimmed := strings.TrimSuffix(path, "/")
		if r.hasRoute(method, trimmed) {
			code := http.StatusTemporaryRedirect
			if method == http.MethodGet {
				code = http.StatusMovedPermanently
			}
			c.notifyMatch()
			c.Redirect(code, trimmed)
			return
		}
	}

	if allow := r.allowedMethods(path); len(allow) > 0 {
		if r.defaultOptions && method == http.MethodOptions {
			c.notifyMatch()
			c.Response.Header().Set("Allow", strings.Join(append(allow, http.MethodOptions), ", "))
			c.Status(http.StatusNoContent)
			return
		}
		if r.handleMethodNotAllowed {
			c.notifyMatch()
			c.Response.Header().Set("Allow", strings.Join(allow, ", "))
			c.handlers = r.compiledMethodNotAllowed
			if c.handlers == nil {
				c.handlers = []HandlerFunc{r.methodNotAllowed}
			}
			c.Next()
			return
		}
	}

	r.serveNotFound(c)
}

// serveNotFound runs the 404 terminal behind the global middleware chain,
// so global middleware decorates 404 responses too.
func (r *Router) serveNotFound(c *Context) {
	c.notifyMatch()
	c.handlers = r.compiledNotFound
	if c.handlers == nil {
		c.handlers = []HandlerFunc{r.notFound}
	}
	c.Next()
}

func (r *Router) serve(c *Context, route *Route, params []matchedParam) {
	c.route = route
	c.routePattern = route.path
	for _, p := range params {
		c.setParam(p.name, p.value)
	}
	c.notifyMatch()
	c.handlers = route.compiledHandlers
	c.Next()
}

func (r *Router) hasRoute(method, path string) bool {
	if _, ok := r.matchStatic(method, path); ok {
		return true
	}
	_, _, ok := r.matchDynamic(method, path)
	return ok
}

func (r *Router) matchStatic(method, path string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byPath, ok := r.static[method]
	if !ok {
		return nil, false
	}
	if filter, ok := r.bloom[method]; ok && !filter.Test([]byte(path)) {
		return nil, false
	}
	route, ok := byPath[path]
	return route, ok
}

type matchedParam struct {
	name  string
	value string
}

// matchDynamic scans a method's dynamic routes in registration order,
// first match wins (spec §4.1: "tried in insertion order").
func (r *Router) matchDynamic(method, path string) (*Route, []matchedParam, bool) {
	r.mu.RLock()
	routes := r.dynamic[method]
	r.mu.RUnlock()

	for _, route := range routes {
		groups := route.pattern.Regexp.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		// Submatch index 0 is the whole match; index i+1 corresponds
		// positionally to route.pattern.Params[i] (group names were
		// sanitized during compilation and aren't reversible, so position
		// is the only reliable correspondence).
		params := make([]matchedParam, 0, len(route.pattern.Params))
		for i, p := range route.pattern.Params {
			if i+1 >= len(groups) {
				continue
			}
			if groups[i+1] == "" && p.IsOptional {
				continue
			}
			params = append(params, matchedParam{name: p.Name, value: groups[i+1]})
		}
		return route, params, true
	}
	return nil, nil, false
}

// allowedMethods reports every method with a route matching path, used to
// build the Allow header on a 405.
func (r *Router) allowedMethods(path string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var methods []string
	for method, byPath := range r.static {
		if _, ok := byPath[path]; ok {
			methods = append(methods, method)
		}
	}
	for method, routes := range r.dynamic {
		for _, route := range routes {
			if route.pattern.Regexp.MatchString(path) {
				methods = append(methods, method)
				break
			}
		}
	}
	sort.Strings(methods)
	return methods
}

func containsDotDot(path string) bool {
	if !strings.Contains(path, "..") {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
