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

// Package ipfilter restricts access by client IP, using the router's own
// trusted-proxy-aware ClientIP resolution so the filter can't be bypassed
// by spoofing a forwarded-for header from outside the trusted proxy set.
package ipfilter

import (
	"net"
	"net/http"

	"github.com/veloxa-dev/velox/router"
)

// Option configures New.
type Option func(*config)

type config struct {
	allow       []*net.IPNet
	deny        []*net.IPNet
	defaultDeny bool
	denyHandler func(c *router.Context)
}

func defaultConfig() *config {
	return &config{
		denyHandler: func(c *router.Context) { c.Status(http.StatusForbidden) },
	}
}

// WithAllow restricts access to the given CIDR ranges; any request from
// outside all of them is denied. Evaluated after WithDeny, so a deny
// match wins.
func WithAllow(cidrs ...string) Option {
	return func(cfg *config) { cfg.allow = append(cfg.allow, mustParseCIDRs(cidrs)...) }
}

// WithDeny blocks requests originating from the given CIDR ranges.
func WithDeny(cidrs ...string) Option {
	return func(cfg *config) { cfg.deny = append(cfg.deny, mustParseCIDRs(cidrs)...) }
}

// WithDefaultAction sets what happens to requests matching neither list:
// "allow" (the default) or "deny". An allow list implies deny-by-default
// regardless of this setting.
func WithDefaultAction(action string) Option {
	return func(cfg *config) {
		switch action {
		case "allow":
			cfg.defaultDeny = false
		case "deny":
			cfg.defaultDeny = true
		default:
			panic("ipfilter: default action must be \"allow\" or \"deny\", got " + action)
		}
	}
}

// WithDenyHandler overrides the default 403 response.
func WithDenyHandler(fn func(c *router.Context)) Option {
	return func(cfg *config) { cfg.denyHandler = fn }
}

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("ipfilter: invalid CIDR " + cidr + ": " + err.Error())
		}
		out = append(out, ipnet)
	}
	return out
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// New returns middleware that allows or denies requests by client IP.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		ip := net.ParseIP(c.ClientIP())
		if ip == nil {
			cfg.denyHandler(c)
			c.Abort()
			return
		}

		switch {
		case contains(cfg.deny, ip):
			cfg.denyHandler(c)
			c.Abort()
		case contains(cfg.allow, ip):
			c.Next()
		case cfg.defaultDeny || len(cfg.allow) > 0:
			cfg.denyHandler(c)
			c.Abort()
		default:
			c.Next()
		}
	}
}
