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

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veloxa-dev/velox/router"
)

func newCORSRouter(opts ...Option) *router.Router {
	r := router.New()
	r.GET("/api", func(c *router.Context) { c.Status(http.StatusOK) }, New(opts...))
	r.OPTIONS("/api", func(c *router.Context) { c.Status(http.StatusOK) }, New(opts...))
	return r
}

func TestUnlistedOriginGetsNoCORSHeaders(t *testing.T) {
	r := newCORSRouter(WithAllowedOrigins("https://good.example"))
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowedOriginGetsEchoedBack(t *testing.T) {
	r := newCORSRouter(WithAllowedOrigins("https://good.example"))
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://good.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://good.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestWildcardOriginWithoutCredentials(t *testing.T) {
	r := newCORSRouter(WithAllowAllOrigins(true))
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://anything.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightRequestShortCircuitsWithNoContent(t *testing.T) {
	r := newCORSRouter(WithAllowedOrigins("https://good.example"), WithAllowedMethods("GET", "POST"))
	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "https://good.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestAllowOriginFuncOverridesStaticList(t *testing.T) {
	r := newCORSRouter(WithAllowOriginFunc(func(origin string) bool {
		return origin == "https://dynamic.example"
	}))
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://dynamic.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://dynamic.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCredentialedRequestSetsAllowCredentials(t *testing.T) {
	r := newCORSRouter(WithAllowedOrigins("https://good.example"), WithAllowCredentials(true))
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://good.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
