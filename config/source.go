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
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MapSource wraps an already-decoded map, useful for defaults and tests.
type MapSource map[string]any

func (m MapSource) Load() (map[string]any, error) { return map[string]any(m), nil }

// YAMLFile loads a YAML document from path.
type YAMLFile string

func (f YAMLFile) Load() (map[string]any, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", f, err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: parsing YAML %s: %w", f, err)
	}
	return convertYAMLMaps(out), nil
}

// convertYAMLMaps normalizes map[string]interface{} produced by yaml.v3
// (which can emit map[string]interface{} for nested maps, consistent with
// the JSON-shaped tree flatten() expects elsewhere).
func convertYAMLMaps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = convertYAMLValue(v)
	}
	return out
}

func convertYAMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return convertYAMLMaps(t)
	case []any:
		converted := make([]any, len(t))
		for i, e := range t {
			converted[i] = convertYAMLValue(e)
		}
		return converted
	default:
		return v
	}
}

// TOMLFile loads a TOML document from path.
type TOMLFile string

func (f TOMLFile) Load() (map[string]any, error) {
	var out map[string]any
	if _, err := toml.DecodeFile(string(f), &out); err != nil {
		return nil, fmt.Errorf("config: parsing TOML %s: %w", f, err)
	}
	return out, nil
}
