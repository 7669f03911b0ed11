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

package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veloxa-dev/velox/router"
)

var tlsConnectionState = tls.ConnectionState{}

func newSecurityRouter(opts ...Option) *router.Router {
	r := router.New()
	r.GET("/", func(c *router.Context) { c.Status(http.StatusOK) }, New(opts...))
	return r
}

func TestDefaultHeadersAreSet(t *testing.T) {
	r := newSecurityRouter()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
}

func TestHSTSOmittedOnPlainHTTP(t *testing.T) {
	r := newSecurityRouter()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestHSTSSetOverTLS(t *testing.T) {
	r := newSecurityRouter(WithHSTS(3600, true, true))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tlsConnectionState
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "max-age=3600; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))
}

func TestCustomHeaderIsApplied(t *testing.T) {
	r := newSecurityRouter(WithHeader("X-Custom", "value"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "value", w.Header().Get("X-Custom"))
}

func TestZeroHSTSMaxAgeDisablesHeaderEvenOverTLS(t *testing.T) {
	r := newSecurityRouter(WithHSTS(0, false, false))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tlsConnectionState
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
