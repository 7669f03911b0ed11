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

import "fmt"

// middlewareEntry is either a plain handler, attached directly at
// registration time, or a name to be resolved against the router's
// MiddlewareRegistry at Freeze. Named entries let WithoutMiddleware
// exclude a middleware added far away (e.g. globally on the engine)
// without holding a reference to the original HandlerFunc value.
type middlewareEntry struct {
	name     string
	instance HandlerFunc
}

// middlewareExclusion matches a middlewareEntry either by name or by
// function identity (compared via reflect.Value.Pointer in resolve, since
// func values aren't comparable with ==).
type middlewareExclusion struct {
	name     string
	instance HandlerFunc
}

// MiddlewareRegistry maps names to middleware handlers, resolved once at
// Freeze so that Use("auth") and WithoutMiddleware("auth") anywhere in the
// tree refer to the same handler regardless of registration order.
type MiddlewareRegistry struct {
	named map[string]HandlerFunc
}

// NewMiddlewareRegistry constructs an empty registry.
func NewMiddlewareRegistry() *MiddlewareRegistry {
	return &MiddlewareRegistry{named: make(map[string]HandlerFunc)}
}

// Register associates a name with a middleware handler. Registering the
// same name twice overwrites the previous handler (spec: "connecting a new
// handler under an existing key replaces the old one").
func (m *MiddlewareRegistry) Register(name string, handler HandlerFunc) {
	m.named[name] = handler
}

func (m *MiddlewareRegistry) resolve(name string) (HandlerFunc, error) {
	h, ok := m.named[name]
	if !ok {
		return nil, fmt.Errorf("router: unknown middleware name %q", name)
	}
	return h, nil
}

// composeChain builds the final ordered handler list for a route: engine
// globals, then each enclosing group's middleware outer-to-inner, then the
// route's own middleware, then the handler itself — with exclusions applied
// in a single top-down pass once every name has been resolved (spec §4.2).
func composeChain(registry *MiddlewareRegistry, layers [][]middlewareEntry, exclusions []middlewareExclusion, handler HandlerFunc) ([]HandlerFunc, error) {
	resolved := make([]HandlerFunc, 0, 8)
	for _, layer := range layers {
		for _, entry := range layer {
			h := entry.instance
			if h == nil {
				var err error
				h, err = registry.resolve(entry.name)
				if err != nil {
					return nil, err
				}
			}
			if containsFunc(resolved, h) {
				continue
			}
			resolved = append(resolved, h)
		}
	}

	if len(exclusions) > 0 {
		filtered := resolved[:0:0]
		for _, h := range resolved {
			if excluded(registry, h, exclusions) {
				continue
			}
			filtered = append(filtered, h)
		}
		resolved = filtered
	}

	resolved = append(resolved, handler)
	return resolved, nil
}

func excluded(registry *MiddlewareRegistry, h HandlerFunc, exclusions []middlewareExclusion) bool {
	for _, ex := range exclusions {
		if ex.instance != nil && funcEqual(h, ex.instance) {
			return true
		}
		if ex.name != "" {
			if named, err := registry.resolve(ex.name); err == nil && funcEqual(h, named) {
				return true
			}
		}
	}
	return false
}
