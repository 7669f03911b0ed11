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

func traceHandler(log *[]string, name string) HandlerFunc {
	return func(c *Context) {
		*log = append(*log, name)
		c.Next()
	}
}

func TestMiddlewareCompositionOrder(t *testing.T) {
	var log []string
	r := New()
	r.Use(traceHandler(&log, "engine"))

	api := r.Group("/api", traceHandler(&log, "group-outer"))
	nested := api.Group("/v1", traceHandler(&log, "group-inner"))
	nested.GET("/ping", func(c *Context) {
		log = append(log, "handler")
		c.String(http.StatusOK, "pong")
	}, traceHandler(&log, "route"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, []string{"engine", "group-outer", "group-inner", "route", "handler"}, log)
}

func TestWithoutMiddlewareExcludesByNameAndInstance(t *testing.T) {
	var log []string
	r := New()
	authMW := traceHandler(&log, "auth")
	r.RegisterMiddleware("auth", authMW)
	r.Use("auth")
	loggingMW := traceHandler(&log, "logging")
	r.Use(loggingMW)

	r.GET("/public", func(c *Context) { log = append(log, "handler") }).
		WithoutMiddleware("auth")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, []string{"logging", "handler"}, log)

	log = nil
	r2 := New()
	mw := traceHandler(&log, "mw")
	r2.Use(mw)
	r2.GET("/excluded", func(c *Context) { log = append(log, "handler") }).
		WithoutMiddleware(mw)

	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/excluded", nil))
	assert.Equal(t, []string{"handler"}, log)
}

func TestAbortStopsRemainingChain(t *testing.T) {
	var log []string
	r := New()
	r.Use(func(c *Context) {
		log = append(log, "first")
		c.Abort()
	})
	r.Use(traceHandler(&log, "second"))
	r.GET("/x", func(c *Context) { log = append(log, "handler") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, []string{"first"}, log)
}

func TestComposeChainDedupesSameInstance(t *testing.T) {
	var log []string
	shared := traceHandler(&log, "shared")
	reg := NewMiddlewareRegistry()

	chain, err := composeChain(reg, [][]middlewareEntry{
		{{instance: shared}},
		{{instance: shared}, {instance: traceHandler(&log, "other")}},
	}, nil, func(c *Context) { log = append(log, "handler") })
	require.NoError(t, err)
	require.Len(t, chain, 3) // shared (once), other, handler

	c := NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	c.handlers = chain
	c.Next()
	assert.Equal(t, []string{"shared", "other", "handler"}, log)
}

func TestGlobalMiddlewareDecorates404And405(t *testing.T) {
	r := New()
	r.Use(func(c *Context) {
		c.Header("X-Served-By", "velox")
		c.Next()
	})
	r.GET("/only-get", func(c *Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "velox", w.Header().Get("X-Served-By"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "velox", w.Header().Get("X-Served-By"))
}

func TestMiddlewareRegistryReplaceKeepsOrder(t *testing.T) {
	reg := NewMiddlewareRegistry()
	var log []string
	reg.Register("m", traceHandler(&log, "v1"))
	reg.Register("m", traceHandler(&log, "v2"))

	chain, err := composeChain(reg, [][]middlewareEntry{{{name: "m"}}}, nil, func(c *Context) {})
	require.NoError(t, err)
	require.Len(t, chain, 2)

	c := NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	c.handlers = chain
	c.Next()
	assert.Equal(t, []string{"v2"}, log)
}
