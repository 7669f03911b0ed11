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

package signalhub

import "fmt"

// UnhandledSignalError wraps a panic recovered from a subscriber's
// Handler, identifying which signal and subscription key produced it.
type UnhandledSignalError struct {
	Signal string
	Key    string
	Cause  any
}

func (e *UnhandledSignalError) Error() string {
	return fmt.Sprintf("signalhub: handler for signal %q (key %q) panicked: %v", e.Signal, e.Key, e.Cause)
}
