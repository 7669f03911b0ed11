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

package ratelimit

// Signal names published by Service.Allow. Exactly one of the two fires
// per call: SignalAllowed when the request passes, SignalBlocked when it
// doesn't (spec §4.3 — "each evaluation emits exactly one ... event").
const (
	SignalAllowed = "ratelimit.allowed"
	SignalBlocked = "ratelimit.blocked"
)

// Evaluation is the payload attached to a SignalAllowed/SignalBlocked
// event: the policy name, its algorithm, the bucket identity, and the
// full Decision (remaining, retry-after, and — when the store failed —
// which failover mode produced the outcome).
type Evaluation struct {
	Policy   string
	Strategy Algorithm
	Key      string
	Decision Decision
}
