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

package cors

// WithAllowedOrigins sets the list of allowed origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.allowedOrigins = origins
		cfg.allowAllOrigins = false
	}
}

// WithAllowAllOrigins allows all origins via Access-Control-Allow-Origin: *.
// Has no effect when combined with WithAllowCredentials(true), since
// browsers reject a wildcard origin on credentialed requests.
func WithAllowAllOrigins(allow bool) Option {
	return func(cfg *config) { cfg.allowAllOrigins = allow }
}

// WithAllowedMethods sets the methods advertised in preflight responses.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) { cfg.allowedMethods = methods }
}

// WithAllowedHeaders sets the request headers advertised in preflight
// responses.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.allowedHeaders = headers }
}

// WithExposedHeaders sets the headers exposed to client-side script via
// Access-Control-Expose-Headers.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.exposedHeaders = headers }
}

// WithAllowCredentials enables cookies/Authorization on cross-origin
// requests. When true, WithAllowAllOrigins is ignored per the CORS spec.
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) { cfg.allowCredentials = allow }
}

// WithMaxAge sets how long, in seconds, a preflight response may be cached.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) { cfg.maxAge = seconds }
}

// WithAllowOriginFunc sets a custom origin predicate, checked instead of
// the static allow list.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) { cfg.allowOriginFunc = fn }
}
