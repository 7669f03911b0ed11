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

// Package signalhub is an in-process event bus: named signals, each with
// zero or more subscribers, dispatched synchronously and in subscription
// order so handlers observe signals in a deterministic sequence
// (spec §6 — dispatch order is part of the contract, not an implementation
// detail left to goroutine scheduling).
package signalhub

import "time"

// Event is one occurrence of a named signal, carrying whatever payload the
// publisher attached.
type Event struct {
	Signal  string
	Sender  string // publisher identity, "" if anonymous
	At      time.Time
	Payload any
}

// Handler receives a dispatched Event. A Handler that panics is recovered
// by the Hub and reported as an UnhandledSignalError; it does not stop
// dispatch to the remaining subscribers.
type Handler func(Event)
