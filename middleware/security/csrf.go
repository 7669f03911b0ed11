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
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"

	"github.com/veloxa-dev/velox/router"
)

// CSRFOption configures NewCSRF.
type CSRFOption func(*csrfConfig)

type csrfConfig struct {
	cookieName   string
	headerName   string
	safeMethods  map[string]struct{}
	cookieMaxAge int
	secure       bool
}

func defaultCSRFConfig() *csrfConfig {
	return &csrfConfig{
		cookieName: "csrf_token",
		headerName: "X-CSRF-Token",
		safeMethods: map[string]struct{}{
			http.MethodGet:     {},
			http.MethodHead:    {},
			http.MethodOptions: {},
		},
		cookieMaxAge: 3600,
		secure:       true,
	}
}

// WithCSRFCookieName overrides the cookie carrying the CSRF token.
func WithCSRFCookieName(name string) CSRFOption {
	return func(cfg *csrfConfig) { cfg.cookieName = name }
}

// WithCSRFHeaderName overrides the request header expected to echo the
// token back.
func WithCSRFHeaderName(name string) CSRFOption {
	return func(cfg *csrfConfig) { cfg.headerName = name }
}

// WithCSRFCookieSecure controls the cookie's Secure flag; disable only for
// local HTTP development.
func WithCSRFCookieSecure(secure bool) CSRFOption {
	return func(cfg *csrfConfig) { cfg.secure = secure }
}

// NewCSRF implements the double-submit-cookie pattern: a random token is
// issued in a cookie on any request that doesn't already have one, and
// every unsafe-method request must echo that same token back in a header,
// which a cross-site form submission can't do without reading the cookie
// itself (blocked by the browser's same-origin policy).
func NewCSRF(opts ...CSRFOption) router.HandlerFunc {
	cfg := defaultCSRFConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		token, hasToken := cookieValue(c, cfg.cookieName)
		if !hasToken {
			token = uuid.NewString()
			c.Response.SetCookie(&http.Cookie{
				Name:     cfg.cookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   cfg.cookieMaxAge,
				HttpOnly: false, // must be readable by the page's script to echo it back
				Secure:   cfg.secure,
				SameSite: http.SameSiteStrictMode,
			})
		}

		if _, safe := cfg.safeMethods[c.Request.Method]; safe {
			c.Next()
			return
		}

		submitted := c.Request.Header.Get(cfg.headerName)
		if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
			c.Status(http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

func cookieValue(c *router.Context, name string) (string, bool) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}
