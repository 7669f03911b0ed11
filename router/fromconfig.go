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

import "github.com/veloxa-dev/velox/config"

// OptionsFromRouting translates the "routing" config section into router
// Options, so a Router can be constructed straight from loaded
// configuration: New(OptionsFromRouting(sec)...). The ETag strategy key is
// not handled here — it configures the etag middleware, which operates on
// responses rather than on route resolution.
func OptionsFromRouting(sec config.RoutingSection) []Option {
	return []Option{
		WithRedirectTrailingSlash(sec.RedirectTrailingSlash),
		WithHandleMethodNotAllowed(sec.HandleMethodNotAllowed),
		WithDefaultOptions(sec.DefaultOptions),
	}
}

// OptionFromTrustedProxies translates the "security.trusted_proxies"
// config section into the client-IP resolution option (spec §4.6): the
// platform header short-circuit, the trusted CIDR set, and the forwarded
// headers inspected for peers inside it.
func OptionFromTrustedProxies(sec config.TrustedProxiesSection) Option {
	if !sec.Enabled {
		return func(*Router) {}
	}
	opts := []TrustedProxyOption{WithProxies(sec.Proxies...)}
	if len(sec.Headers) > 0 {
		headers := make([]RealIPHeader, len(sec.Headers))
		for i, h := range sec.Headers {
			headers[i] = RealIPHeader(h)
		}
		opts = append(opts, WithProxyHeaders(headers...))
	}
	if sec.PlatformHeader != "" {
		opts = append(opts, WithPlatformHeader(RealIPHeader(sec.PlatformHeader)))
	}
	return WithTrustedProxies(opts...)
}
