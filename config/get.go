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
	"time"

	"github.com/spf13/cast"
)

// Get returns the value at key cast to T, or the zero value of T if the
// key is absent or the cast fails. Use GetE when the distinction matters.
func Get[T any](c *Config, key string) T {
	v, _ := GetE[T](c, key)
	return v
}

// GetOr returns the value at key cast to T, or def if the key is absent or
// the cast fails.
func GetOr[T any](c *Config, key string, def T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return def
	}
	return v
}

// GetE returns the value at key cast to T, or an error identifying whether
// the key was missing or the stored value couldn't be cast.
func GetE[T any](c *Config, key string) (T, error) {
	var zero T
	raw, ok := c.raw(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	converted, err := castTo[T](raw)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrCastFailed, key, err)
	}
	return converted, nil
}

// castTo dispatches to the spf13/cast function matching T, since cast's
// API is one function per concrete type rather than generic.
func castTo[T any](raw any) (T, error) {
	var zero T
	switch any(zero).(type) {
	case string:
		v, err := cast.ToStringE(raw)
		return any(v).(T), err
	case int:
		v, err := cast.ToIntE(raw)
		return any(v).(T), err
	case int64:
		v, err := cast.ToInt64E(raw)
		return any(v).(T), err
	case uint:
		v, err := cast.ToUintE(raw)
		return any(v).(T), err
	case uint64:
		v, err := cast.ToUint64E(raw)
		return any(v).(T), err
	case float64:
		v, err := cast.ToFloat64E(raw)
		return any(v).(T), err
	case bool:
		v, err := cast.ToBoolE(raw)
		return any(v).(T), err
	case time.Duration:
		v, err := cast.ToDurationE(raw)
		return any(v).(T), err
	case time.Time:
		v, err := cast.ToTimeE(raw)
		return any(v).(T), err
	case []string:
		v, err := cast.ToStringSliceE(raw)
		return any(v).(T), err
	default:
		if v, ok := raw.(T); ok {
			return v, nil
		}
		return zero, fmt.Errorf("config: unsupported target type %T", zero)
	}
}
