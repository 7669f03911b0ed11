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

package ipfilter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veloxa-dev/velox/router"
)

func newFilterRouter(opts ...Option) *router.Router {
	r := router.New()
	r.GET("/", func(c *router.Context) { c.Status(http.StatusOK) }, New(opts...))
	return r
}

func TestAllowListRejectsOutsideRange(t *testing.T) {
	r := newFilterRouter(WithAllow("10.0.0.0/8"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAllowListAdmitsInsideRange(t *testing.T) {
	r := newFilterRouter(WithAllow("10.0.0.0/8"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDenyListBlocksMatchingRange(t *testing.T) {
	r := newFilterRouter(WithDeny("198.51.100.0/24"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDenyListLeavesOthersUntouched(t *testing.T) {
	r := newFilterRouter(WithDeny("198.51.100.0/24"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultActionDenyBlocksUnlistedIPs(t *testing.T) {
	r := newFilterRouter(WithDeny("198.51.100.0/24"), WithDefaultAction("deny"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownDefaultActionPanics(t *testing.T) {
	assert.Panics(t, func() { New(WithDefaultAction("drop")) })
}

func TestInvalidCIDRPanicsAtConstruction(t *testing.T) {
	assert.Panics(t, func() { New(WithAllow("not-a-cidr")) })
}

func TestCustomDenyHandlerInvoked(t *testing.T) {
	r := newFilterRouter(WithAllow("10.0.0.0/8"), WithDenyHandler(func(c *router.Context) {
		c.Status(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
