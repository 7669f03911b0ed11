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

import "reflect"

// funcEqual compares two HandlerFunc values by underlying code pointer.
// Func values aren't comparable with ==; this is how WithoutMiddleware
// matches a previously-registered instance.
func funcEqual(a, b HandlerFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// containsFunc reports whether h's underlying code pointer already appears
// in handlers, used to deduplicate a composed chain by reference identity
// (spec §4.2 — "the same function instance may appear at most once").
func containsFunc(handlers []HandlerFunc, h HandlerFunc) bool {
	for _, existing := range handlers {
		if funcEqual(existing, h) {
			return true
		}
	}
	return false
}
