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

	"github.com/go-viper/mapstructure/v2"
)

// Bind decodes every key under section into target, a pointer to a struct
// tagged with `mapstructure:"..."`. Unknown keys are ignored; type
// mismatches are reported with the offending key path.
func Bind(c *Config, section string, target any) error {
	data := unflatten(c.Section(section))

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("config: building decoder for section %q: %w", section, err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("config: binding section %q: %w", section, err)
	}
	return nil
}

// unflatten reverses flatten: dotted keys ("csrf.enabled") become nested
// maps ({"csrf": {"enabled": ...}}), which is the shape mapstructure needs
// to populate nested struct fields.
func unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range flat {
		parts := splitDotted(k)
		cur := out
		for i, p := range parts {
			if i == len(parts)-1 {
				cur[p] = v
				continue
			}
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
	}
	return out
}

func splitDotted(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	parts = append(parts, key[start:])
	return parts
}
