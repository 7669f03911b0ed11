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

// Package compiler turns a path pattern ("/users/{id:int}/posts/{*rest}")
// into an anchored regular expression plus an ordered parameter descriptor
// list, following the grammar in the route matcher design: `{name}`,
// `{name:type}`, `{name?}` (trailing only), `{*name}` (tail, last segment
// only), narrowed by an optional per-name constraints map.
package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veloxa-dev/velox/router/route"
)

// Pattern is a compiled path pattern ready for matching.
type Pattern struct {
	Raw     string
	Regexp  *regexp.Regexp // nil when Static is true
	Params  []route.ParamInfo
	Static  bool // no placeholders at all; eligible for the bloom/hash fast path
	Literal string // normalized literal form, set when Static
}

// Compile parses pattern and merges userConstraints (name -> regex body,
// unanchored) into the per-segment regex. Compile is called once per route
// at registration time; it never runs on the request path.
func Compile(pattern string, userConstraints map[string]string) (*Pattern, error) {
	trimmed := strings.TrimSuffix(pattern, "/")
	if trimmed == "" {
		trimmed = "/"
	}

	segments := strings.Split(strings.Trim(trimmed, "/"), "/")
	if trimmed == "/" {
		segments = nil
	}

	if !strings.Contains(pattern, "{") {
		return &Pattern{Raw: pattern, Static: true, Literal: trimmed}, nil
	}

	var b strings.Builder
	b.WriteString("^")

	var params []route.ParamInfo
	sawOptional := false
	sawWildcard := false

	for i, seg := range segments {
		isLast := i == len(segments)-1

		if sawOptional {
			return nil, fmt.Errorf("compiler: optional segment %q must be last in %q", segments[i-1], pattern)
		}
		if sawWildcard {
			return nil, fmt.Errorf("compiler: wildcard segment must be last in %q", pattern)
		}

		switch {
		case strings.HasPrefix(seg, "{*") && strings.HasSuffix(seg, "}"):
			name := seg[2 : len(seg)-1]
			if !isLast {
				return nil, fmt.Errorf("compiler: wildcard {*%s} must be the last segment in %q", name, pattern)
			}
			b.WriteString(fmt.Sprintf("/(?P<%s>.*)", regexpGroupName(name)))
			params = append(params, route.ParamInfo{Name: name, Type: route.TypeString, IsWildcard: true})
			sawWildcard = true

		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			inner := seg[1 : len(seg)-1]
			optional := strings.HasSuffix(inner, "?")
			if optional {
				inner = strings.TrimSuffix(inner, "?")
				if !isLast {
					return nil, fmt.Errorf("compiler: optional segment {%s?} must be last in %q", inner, pattern)
				}
			}

			name := inner
			typ := route.TypeString
			if idx := strings.IndexByte(inner, ':'); idx >= 0 {
				name = inner[:idx]
				typ = route.ParamType(inner[idx+1:])
			}

			body, ok := route.PatternFor(typ)
			if !ok {
				return nil, fmt.Errorf("compiler: unknown param type %q for %q in %q", typ, name, pattern)
			}
			if c, ok := userConstraints[name]; ok {
				body = c
			}

			group := fmt.Sprintf("(?P<%s>%s)", regexpGroupName(name), body)
			if optional {
				b.WriteString("(?:/" + group + ")?")
				sawOptional = true
			} else {
				b.WriteString("/" + group)
			}

			params = append(params, route.ParamInfo{Name: name, Type: typ, IsOptional: optional})

		default:
			b.WriteString("/" + regexp.QuoteMeta(seg))
		}
	}

	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compiler: compiling %q: %w", pattern, err)
	}

	return &Pattern{Raw: pattern, Regexp: re, Params: params, Static: false}, nil
}

// regexpGroupName sanitizes a param name for use as a Go regexp named group,
// which only allows word characters. Path parameter names are already
// restricted to that alphabet by convention, but dashes are common enough in
// the wild (e.g. {user-id}) that we translate them rather than reject them.
func regexpGroupName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
