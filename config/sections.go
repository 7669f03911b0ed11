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

package config

import "time"

// RoutingSection binds the "routing.*" keys recognized by the engine
// (spec §6).
type RoutingSection struct {
	RedirectTrailingSlash  bool        `mapstructure:"redirect_trailing_slash"`
	HandleMethodNotAllowed bool        `mapstructure:"handle_method_not_allowed"`
	DefaultOptions         bool        `mapstructure:"default_options"`
	ETag                   ETagSection `mapstructure:"etag"`
}

// ETagSection binds "routing.etag.*".
type ETagSection struct {
	Strategy string `mapstructure:"strategy"` // disabled|strong|weak
}

// TrustedProxiesSection binds "security.trusted_proxies.*".
type TrustedProxiesSection struct {
	Enabled         bool     `mapstructure:"enabled"`
	Proxies         []string `mapstructure:"proxies"`
	Headers         []string `mapstructure:"headers"`
	PlatformHeader  string   `mapstructure:"platform_header"`
	ForwardClientIP bool     `mapstructure:"forward_client_ip"`
}

// IPFilterSection binds "security.ip_filter.*".
type IPFilterSection struct {
	Enabled       bool     `mapstructure:"enabled"`
	DefaultAction string   `mapstructure:"default_action"` // allow|deny
	Allow         []string `mapstructure:"allow"`
	Deny          []string `mapstructure:"deny"`
}

// CSRFSection binds "security.csrf.*".
type CSRFSection struct {
	Enabled    bool   `mapstructure:"enabled"`
	CookieName string `mapstructure:"cookie_name"`
}

// SecuritySection binds the rest of "security.*".
type SecuritySection struct {
	MaxRequestSize int64                 `mapstructure:"max_request_size"`
	CSRF           CSRFSection           `mapstructure:"csrf"`
	TrustedProxies TrustedProxiesSection `mapstructure:"trusted_proxies"`
	IPFilter       IPFilterSection       `mapstructure:"ip_filter"`
}

// RateLimitPolicySection binds one entry of "rate_limit.policies[]".
type RateLimitPolicySection struct {
	Name      string        `mapstructure:"name"`
	Method    string        `mapstructure:"method"`
	Path      string        `mapstructure:"path"`
	Algorithm      string        `mapstructure:"algorithm"` // token_bucket|sliding_window|quota
	Limit          int64         `mapstructure:"limit"`
	Burst          int64         `mapstructure:"burst"`
	RefillInterval time.Duration `mapstructure:"refill_interval"` // token_bucket: period over which limit tokens refill
	Window         time.Duration `mapstructure:"window"`
	Identity       string        `mapstructure:"identity"` // ip|header:<Name>
	Failover       string        `mapstructure:"failover"` // allow|block|local
}

// RateLimitSection binds "rate_limit.*".
type RateLimitSection struct {
	Enabled  bool                     `mapstructure:"enabled"`
	Backend  string                   `mapstructure:"backend"` // memory|redis
	Failover string                   `mapstructure:"failover"`
	Store    string                   `mapstructure:"store"`
	Policies []RateLimitPolicySection `mapstructure:"policies"`
}

// SessionSection binds "session.*".
type SessionSection struct {
	Driver   string        `mapstructure:"driver"`
	Lifetime time.Duration `mapstructure:"lifetime"`
	Cookie   string        `mapstructure:"cookie"`
	Encrypt  bool          `mapstructure:"encrypt"`
	Keys     []string      `mapstructure:"keys"`
}

// BindRouting decodes the "routing" section.
func BindRouting(c *Config) (RoutingSection, error) {
	var out RoutingSection
	err := Bind(c, "routing", &out)
	return out, err
}

// BindSecurity decodes the "security" section.
func BindSecurity(c *Config) (SecuritySection, error) {
	var out SecuritySection
	err := Bind(c, "security", &out)
	return out, err
}

// BindRateLimit decodes the "rate_limit" section.
func BindRateLimit(c *Config) (RateLimitSection, error) {
	var out RateLimitSection
	err := Bind(c, "rate_limit", &out)
	return out, err
}

// BindSession decodes the "session" section.
func BindSession(c *Config) (SessionSection, error) {
	var out SessionSection
	err := Bind(c, "session", &out)
	return out, err
}
