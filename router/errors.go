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

import "errors"

// Kind classifies the errors the engine's terminal handler knows how to turn
// into an HTTP response (see the error handling design in SPEC_FULL.md §ambient).
type Kind int

const (
	KindNotFound Kind = iota
	KindMethodNotAllowed
	KindValidationFailed
	KindRateLimited
	KindBodyTooLarge
	KindForbidden
	KindInternalError
	KindConfigurationError
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindValidationFailed:
		return "validation_failed"
	case KindRateLimited:
		return "rate_limited"
	case KindBodyTooLarge:
		return "body_too_large"
	case KindForbidden:
		return "forbidden"
	case KindInternalError:
		return "internal_error"
	case KindConfigurationError:
		return "configuration_error"
	default:
		return "unknown"
	}
}

// HTTPError is a Kind-tagged error that the engine's error path converts into
// a status code and body. Handlers and middleware may return or panic with
// one; anything else uncaught becomes KindInternalError.
type HTTPError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(kind Kind, status int, message string) *HTTPError {
	return &HTTPError{Kind: kind, Status: status, Message: message}
}

var (
	ErrParamMissing      = errors.New("router: parameter not found")
	ErrParamInvalid      = errors.New("router: invalid parameter value")
	ErrRouteConflict     = errors.New("router: duplicate route registration")
	ErrRouteNameConflict = errors.New("router: duplicate route name")
	ErrRouterFrozen      = errors.New("router: cannot register routes after Freeze")
	ErrNilHandler        = errors.New("router: handler must not be nil")
)
