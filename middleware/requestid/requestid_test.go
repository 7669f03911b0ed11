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

package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxa-dev/velox/router"
)

func TestGeneratesIDWhenNoneSupplied(t *testing.T) {
	r := router.New()
	var stashed string
	r.GET("/", func(c *router.Context) { stashed = Get(c) }, New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NotEmpty(t, stashed)
	assert.Equal(t, stashed, w.Header().Get("X-Request-ID"))
}

func TestReusesClientSuppliedHeaderByDefault(t *testing.T) {
	r := router.New()
	var stashed string
	r.GET("/", func(c *router.Context) { stashed = Get(c) }, New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-supplied-id", stashed)
	assert.Equal(t, "client-supplied-id", w.Header().Get("X-Request-ID"))
}

func TestDisallowClientIDGeneratesFreshOne(t *testing.T) {
	r := router.New()
	var stashed string
	r.GET("/", func(c *router.Context) { stashed = Get(c) }, New(WithAllowClientID(false)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "client-supplied-id", stashed)
}

func TestCustomHeaderNameIsRespected(t *testing.T) {
	r := router.New()
	r.GET("/", func(c *router.Context) {}, New(WithHeader("X-Trace-ID")))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}

func TestWithULIDProducesTwentySixCharacterID(t *testing.T) {
	r := router.New()
	var stashed string
	r.GET("/", func(c *router.Context) { stashed = Get(c) }, New(WithULID()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Len(t, stashed, 26)
}

func TestWithGeneratorOverridesIDSource(t *testing.T) {
	r := router.New()
	var stashed string
	r.GET("/", func(c *router.Context) { stashed = Get(c) }, New(WithGenerator(func() string { return "fixed-id" })))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", stashed)
}

func TestGetReturnsEmptyWhenMiddlewareNeverRan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := router.NewContext(httptest.NewRecorder(), req)
	assert.Equal(t, "", Get(c))
}
