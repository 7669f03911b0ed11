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

// Package cors answers cross-origin preflight requests and annotates
// actual responses with the matching Access-Control-* headers.
package cors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/veloxa-dev/velox/router"
)

// Option configures New.
type Option func(*config)

type config struct {
	allowedOrigins   []string
	allowAllOrigins  bool
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowOriginFunc  func(origin string) bool
}

func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

func (c *config) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if c.allowOriginFunc != nil {
		return c.allowOriginFunc(origin)
	}
	if c.allowAllOrigins && !c.allowCredentials {
		return true
	}
	for _, o := range c.allowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// New returns middleware that handles CORS preflight (OPTIONS) requests
// directly and sets the appropriate Access-Control-* headers on every
// request with a matching Origin.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		origin := c.Request.Header.Get("Origin")
		if !cfg.originAllowed(origin) {
			c.Next()
			return
		}

		header := c.Response.Header()
		if cfg.allowAllOrigins && !cfg.allowCredentials {
			header.Set("Access-Control-Allow-Origin", "*")
		} else {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Add("Vary", "Origin")
		}
		if cfg.allowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		if len(cfg.exposedHeaders) > 0 {
			header.Set("Access-Control-Expose-Headers", strings.Join(cfg.exposedHeaders, ", "))
		}

		if c.Request.Method == http.MethodOptions {
			header.Set("Access-Control-Allow-Methods", strings.Join(cfg.allowedMethods, ", "))
			header.Set("Access-Control-Allow-Headers", strings.Join(cfg.allowedHeaders, ", "))
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.maxAge))
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}
