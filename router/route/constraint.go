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

// Package route holds the parameter types and constraints used to compile
// path patterns into matchers. It has no dependency on the request-serving
// path: everything here runs once, at route registration time.
package route

// ParamType is the type tag attached to a `{name:type}` placeholder.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "int"
	TypeDouble ParamType = "double"
	TypeSlug   ParamType = "slug"
	TypeUUID   ParamType = "uuid"
	TypeEmail  ParamType = "email"
	TypeIP     ParamType = "ip"
)

// typePatterns holds the anchored-free regex body for each built-in type.
// Patterns are combined into a single anchored segment regex at compile time,
// so none of these carry ^/$ themselves.
var typePatterns = map[ParamType]string{
	TypeInt:    `-?\d+`,
	TypeDouble: `-?\d+(\.\d+)?`,
	TypeSlug:   `[a-z0-9]+(-[a-z0-9]+)*`,
	TypeUUID:   `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
	TypeEmail:  `[^\s@/]+@[^\s@/]+\.[^\s@/]+`,
	TypeIP:     `(?:\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}|[0-9a-fA-F:]+:[0-9a-fA-F:]*)`,
	TypeString: `[^/]+`,
}

// PatternFor returns the regex body for a built-in type. ok is false for an
// unknown type, in which case callers should treat the placeholder as a
// compile-time error.
func PatternFor(t ParamType) (string, bool) {
	p, ok := typePatterns[t]
	return p, ok
}

// ParamInfo is returned alongside extracted parameter values so callers can
// tell a present-but-empty capture apart from a missing optional one.
type ParamInfo struct {
	Name       string
	Type       ParamType
	IsOptional bool
	IsWildcard bool
}
