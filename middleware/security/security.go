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

// Package security sets standard hardening headers and provides
// CSRF protection for session-backed, cookie-authenticated routes.
package security

import (
	"fmt"

	"github.com/veloxa-dev/velox/router"
)

// Option configures New.
type Option func(*config)

type config struct {
	frameOptions          string
	contentTypeNosniff    bool
	xssProtection         string
	hstsMaxAge            int
	hstsIncludeSubdomains bool
	hstsPreload           bool
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	customHeaders         map[string]string
}

func defaultConfig() *config {
	return &config{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		xssProtection:         "1; mode=block",
		hstsMaxAge:            31536000,
		hstsIncludeSubdomains: true,
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         make(map[string]string),
	}
}

// WithFrameOptions sets X-Frame-Options.
func WithFrameOptions(value string) Option { return func(cfg *config) { cfg.frameOptions = value } }

// WithContentSecurityPolicy sets the Content-Security-Policy header.
func WithContentSecurityPolicy(value string) Option {
	return func(cfg *config) { cfg.contentSecurityPolicy = value }
}

// WithHSTS configures Strict-Transport-Security. maxAge 0 disables it.
func WithHSTS(maxAge int, includeSubdomains, preload bool) Option {
	return func(cfg *config) {
		cfg.hstsMaxAge = maxAge
		cfg.hstsIncludeSubdomains = includeSubdomains
		cfg.hstsPreload = preload
	}
}

// WithReferrerPolicy sets the Referrer-Policy header.
func WithReferrerPolicy(value string) Option {
	return func(cfg *config) { cfg.referrerPolicy = value }
}

// WithPermissionsPolicy sets the Permissions-Policy header.
func WithPermissionsPolicy(value string) Option {
	return func(cfg *config) { cfg.permissionsPolicy = value }
}

// WithHeader sets an additional, arbitrary response header.
func WithHeader(name, value string) Option {
	return func(cfg *config) { cfg.customHeaders[name] = value }
}

// New returns middleware that sets hardening headers with secure defaults,
// applying HSTS only to requests already over TLS.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var hsts string
	if cfg.hstsMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.hstsMaxAge)
		if cfg.hstsIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.hstsPreload {
			hsts += "; preload"
		}
	}

	return func(c *router.Context) {
		h := c.Response.Header()
		if cfg.frameOptions != "" {
			h.Set("X-Frame-Options", cfg.frameOptions)
		}
		if cfg.contentTypeNosniff {
			h.Set("X-Content-Type-Options", "nosniff")
		}
		if cfg.xssProtection != "" {
			h.Set("X-XSS-Protection", cfg.xssProtection)
		}
		if hsts != "" && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		if cfg.contentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", cfg.contentSecurityPolicy)
		}
		if cfg.referrerPolicy != "" {
			h.Set("Referrer-Policy", cfg.referrerPolicy)
		}
		if cfg.permissionsPolicy != "" {
			h.Set("Permissions-Policy", cfg.permissionsPolicy)
		}
		for name, value := range cfg.customHeaders {
			h.Set(name, value)
		}
		c.Next()
	}
}
