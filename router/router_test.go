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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterStaticAndDynamicDispatch(t *testing.T) {
	r := New()
	r.GET("/health", func(c *Context) { c.String(http.StatusOK, "ok") })
	r.GET("/users/{id:int}", func(c *Context) {
		id, err := c.ParamInt("id")
		require.NoError(t, err)
		c.String(http.StatusOK, "user")
		_ = id
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-a-number", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterFirstRegisteredWins(t *testing.T) {
	r := New()
	r.GET("/items/{id:int}", func(c *Context) { c.String(http.StatusOK, "typed") })
	r.GET("/items/{name}", func(c *Context) { c.String(http.StatusOK, "fallback") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, "typed", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, "fallback", w.Body.String())
}

func TestRouterTrailingSlashRedirect(t *testing.T) {
	r := New()
	r.GET("/reports", func(c *Context) { c.String(http.StatusOK, "ok") })
	r.POST("/reports", func(c *Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/reports", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reports/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := New()
	r.GET("/widgets", func(c *Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/widgets", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET", w.Header().Get("Allow"))
}

func TestRouterWildcardPreservesEmbeddedSlashes(t *testing.T) {
	r := New()
	var captured string
	r.GET("/files/{*path}", func(c *Context) { captured = c.Param("path") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/a/b/c.txt", nil))
	assert.Equal(t, "a/b/c.txt", captured)
}

func TestMountCopiesRoutesUnderPrefix(t *testing.T) {
	var log []string
	api := New()
	api.Use(func(c *Context) { log = append(log, "api-mw"); c.Next() })
	api.GET("/orders/{id:int}", func(c *Context) {
		log = append(log, "handler")
		c.String(http.StatusOK, c.Param("id"))
	})

	root := New()
	root.Mount("/v1", api, func(c *Context) { log = append(log, "mount-mw"); c.Next() })

	w := httptest.NewRecorder()
	root.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/7", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())
	assert.Equal(t, []string{"mount-mw", "api-mw", "handler"}, log)

	// The unprefixed path does not exist on the mounting router.
	w = httptest.NewRecorder()
	root.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteNameConflictDetectedAtFreeze(t *testing.T) {
	r := New()
	r.GET("/a", func(c *Context) {}).SetName("dup")
	r.GET("/b", func(c *Context) {}).SetName("dup")

	err := r.Freeze()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRouteNameConflict)
}

func TestDuplicateStaticRoutePanics(t *testing.T) {
	r := New()
	r.GET("/dup", func(c *Context) {})
	assert.PanicsWithError(t, ErrRouteConflict.Error()+": GET /dup conflicts with GET /dup", func() {
		r.GET("/dup", func(c *Context) {})
	})
}

func TestMutatingRouteAfterFreezePanics(t *testing.T) {
	r := New()
	route := r.GET("/x", func(c *Context) {})
	require.NoError(t, r.Freeze())

	assert.PanicsWithValue(t, ErrRouterFrozen, func() {
		r.GET("/y", func(c *Context) {})
	})
	assert.Panics(t, func() { route.SetName("late") })
}
