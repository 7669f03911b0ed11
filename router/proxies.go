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
	"fmt"
	"net"
	"strings"
)

// RealIPHeader names a header consulted for the real client IP once the
// immediate peer is trusted.
type RealIPHeader string

const (
	HeaderXFF          RealIPHeader = "X-Forwarded-For"
	HeaderXRealIP      RealIPHeader = "X-Real-IP"
	HeaderCFConnecting RealIPHeader = "CF-Connecting-IP"
)

// TrustedProxyOption configures WithTrustedProxies.
type TrustedProxyOption func(*trustedProxyConfig)

type trustedProxyConfig struct {
	proxies        []string
	headers        []RealIPHeader
	maxHops        int
	platformHeader RealIPHeader // bypasses CIDR gating entirely, spec §4.6 step 1
}

type realIPConfig struct {
	cidrs          []*net.IPNet
	headers        []RealIPHeader
	maxHops        int
	platformHeader RealIPHeader
}

// WithProxies sets the trusted proxy CIDR ranges; only peers inside them
// have their forwarded-IP headers honored.
func WithProxies(cidrs ...string) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) { cfg.proxies = cidrs }
}

// WithProxyHeaders sets which forwarded-IP headers to consult, in order of
// preference. Defaults to [X-Forwarded-For, X-Real-IP].
func WithProxyHeaders(headers ...RealIPHeader) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) { cfg.headers = headers }
}

// WithProxyMaxHops bounds how many trusted hops are walked in
// X-Forwarded-For before the chain is treated as exhausted. Defaults to 1.
func WithProxyMaxHops(maxHops int) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) { cfg.maxHops = maxHops }
}

// WithPlatformHeader names a header (e.g. CF-Connecting-IP) that is trusted
// unconditionally, without CIDR gating — spec §4.6 step 1. Use this only
// behind a platform that strips or overwrites the header itself (Cloudflare,
// a managed load balancer); it is checked before the CIDR-gated headers.
func WithPlatformHeader(header RealIPHeader) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) { cfg.platformHeader = header }
}

func compileProxies(opts *trustedProxyConfig) (*realIPConfig, error) {
	cfg := &realIPConfig{headers: opts.headers, maxHops: opts.maxHops, platformHeader: opts.platformHeader}

	if len(cfg.headers) == 0 {
		cfg.headers = []RealIPHeader{HeaderXFF, HeaderXRealIP}
	}
	if cfg.maxHops <= 0 {
		cfg.maxHops = 1
	}

	cfg.cidrs = make([]*net.IPNet, 0, len(opts.proxies))
	for _, cidr := range opts.proxies {
		_, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("router: invalid CIDR %q: %w", cidr, err)
		}
		cfg.cidrs = append(cfg.cidrs, ipnet)
	}
	return cfg, nil
}

func (cfg *realIPConfig) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipnet := range cfg.cidrs {
		if ipnet.Contains(parsed) {
			return true
		}
	}
	return false
}

// WithTrustedProxies configures trusted-proxy-gated client IP resolution.
// Only peers inside the given CIDRs have their forwarded-IP headers honored,
// which prevents IP spoofing by untrusted clients.
func WithTrustedProxies(opts ...TrustedProxyOption) Option {
	return func(r *Router) {
		cfg := &trustedProxyConfig{}
		for _, opt := range opts {
			opt(cfg)
		}
		compiled, err := compileProxies(cfg)
		if err != nil {
			panic(fmt.Sprintf("router: invalid trusted proxy configuration: %v", err))
		}
		r.realip = compiled
	}
}

// resolveClientIP implements spec §4.6 in order: explicit override, trusted
// platform header, trusted-proxy-gated forwarded headers, transport remote
// address.
func resolveClientIP(c *Context) string {
	if c.overrideIP != "" {
		return c.overrideIP
	}

	remote := clientIPFromRemoteAddr(c.Request.RemoteAddr)

	if c.router == nil || c.router.realip == nil {
		return remote
	}
	cfg := c.router.realip

	if cfg.platformHeader != "" {
		if ip := parseOneIP(c.Request.Header.Get(string(cfg.platformHeader))); ip != "" {
			return ip
		}
	}

	if !cfg.isTrusted(remote) {
		return remote
	}

	for _, h := range cfg.headers {
		switch h {
		case HeaderXFF:
			if ip := lastUntrustedXFF(c.Request.Header.Get("X-Forwarded-For"), cfg); ip != "" {
				return ip
			}
		default:
			if ip := parseOneIP(c.Request.Header.Get(string(h))); ip != "" {
				return ip
			}
		}
	}

	return remote
}

// SetClientIPOverride bypasses all other resolution steps; useful for tests
// and for transports (Unix sockets, trusted internal callers) that already
// know the true client address.
func (c *Context) SetClientIPOverride(ip string) { c.overrideIP = ip }

func clientIPFromRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// lastUntrustedXFF walks X-Forwarded-For from right to left (most recent
// proxy first) and returns the first address met that isn't itself in a
// trusted CIDR, i.e. the right-most untrusted one, bounded by maxHops.
func lastUntrustedXFF(xff string, cfg *realIPConfig) string {
	if xff == "" {
		return ""
	}
	parts := splitAndTrim(xff, ',')
	if len(parts) == 0 {
		return ""
	}

	hops := 0
	for i := len(parts) - 1; i >= 0; i-- {
		ip := parseOneIP(parts[i])
		if ip == "" {
			continue
		}
		if cfg.isTrusted(ip) {
			hops++
			if cfg.maxHops > 0 && hops > cfg.maxHops {
				break
			}
			continue
		}
		return ip
	}

	// All IPs trusted (or max hops reached first): fall back to the
	// left-most entry, which is the original client in a well-formed chain.
	for _, p := range parts {
		if ip := parseOneIP(p); ip != "" {
			return ip
		}
	}
	return ""
}

func parseOneIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}

func splitAndTrim(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, string(sep))
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
