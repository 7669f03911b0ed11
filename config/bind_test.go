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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindDecodesNestedStruct(t *testing.T) {
	c, err := New(MapSource{
		"routing": map[string]any{
			"redirect_trailing_slash":  true,
			"handle_method_not_allowed": true,
			"etag": map[string]any{
				"strategy": "strong",
			},
		},
	})
	require.NoError(t, err)

	var out RoutingSection
	require.NoError(t, Bind(c, "routing", &out))

	assert.True(t, out.RedirectTrailingSlash)
	assert.True(t, out.HandleMethodNotAllowed)
	assert.Equal(t, "strong", out.ETag.Strategy)
}

func TestBindIgnoresUnknownKeys(t *testing.T) {
	c, err := New(MapSource{
		"routing": map[string]any{
			"redirect_trailing_slash": true,
			"totally_unknown_field":   "whatever",
		},
	})
	require.NoError(t, err)

	var out RoutingSection
	assert.NoError(t, Bind(c, "routing", &out))
	assert.True(t, out.RedirectTrailingSlash)
}

func TestBindSecurityDecodesDeeplyNestedSections(t *testing.T) {
	c, err := New(MapSource{
		"security": map[string]any{
			"max_request_size": 2048,
			"csrf": map[string]any{
				"enabled":     true,
				"cookie_name": "csrf_token",
			},
			"trusted_proxies": map[string]any{
				"enabled": true,
				"proxies": []string{"10.0.0.0/8", "172.16.0.0/12"},
				"headers": []string{"X-Forwarded-For"},
			},
			"ip_filter": map[string]any{
				"enabled":        true,
				"default_action": "deny",
				"allow":          []string{"198.51.100.0/24"},
			},
		},
	})
	require.NoError(t, err)

	sec, err := BindSecurity(c)
	require.NoError(t, err)

	assert.EqualValues(t, 2048, sec.MaxRequestSize)
	assert.True(t, sec.CSRF.Enabled)
	assert.Equal(t, "csrf_token", sec.CSRF.CookieName)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, sec.TrustedProxies.Proxies)
	assert.Equal(t, "deny", sec.IPFilter.DefaultAction)
}

func TestBindRateLimitDecodesPolicyList(t *testing.T) {
	c, err := New(MapSource{
		"rate_limit": map[string]any{
			"enabled": true,
			"backend": "redis",
			"policies": []map[string]any{
				{
					"name":      "api",
					"method":    "*",
					"path":      "/api/*",
					"algorithm": "token_bucket",
					"limit":     100,
					"burst":     20,
					"window":    "1m",
					"identity":  "ip",
					"failover":  "allow",
				},
			},
		},
	})
	require.NoError(t, err)

	rl, err := BindRateLimit(c)
	require.NoError(t, err)

	assert.True(t, rl.Enabled)
	assert.Equal(t, "redis", rl.Backend)
	require.Len(t, rl.Policies, 1)
	assert.Equal(t, "api", rl.Policies[0].Name)
	assert.EqualValues(t, 100, rl.Policies[0].Limit)
	assert.Equal(t, time.Minute, rl.Policies[0].Window)
}

func TestBindSessionDecodesDurationAndSlice(t *testing.T) {
	c, err := New(MapSource{
		"session": map[string]any{
			"driver":   "cookie",
			"lifetime": "24h",
			"cookie":   "session_id",
			"encrypt":  true,
			"keys":     "key1,key2",
		},
	})
	require.NoError(t, err)

	sess, err := BindSession(c)
	require.NoError(t, err)

	assert.Equal(t, "cookie", sess.Driver)
	assert.Equal(t, 24*time.Hour, sess.Lifetime)
	assert.Equal(t, []string{"key1", "key2"}, sess.Keys)
}

func TestBindRoutingViaHelperFunction(t *testing.T) {
	c, err := New(MapSource{
		"routing": map[string]any{"default_options": true},
	})
	require.NoError(t, err)

	routing, err := BindRouting(c)
	require.NoError(t, err)
	assert.True(t, routing.DefaultOptions)
}
