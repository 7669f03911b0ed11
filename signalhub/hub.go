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

import (
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	key     string
	sender  string // "" matches any sender
	handler Handler
}

// Hub is a signal bus scoped by {sender, key}: connecting a new handler
// under a key already in use on a signal replaces the prior handler in
// place, keeping its position in the dispatch order rather than moving it
// to the end (spec §6).
type Hub struct {
	mu   sync.Mutex
	subs map[string][]*subscription

	onError func(error)
}

// New constructs an empty Hub. onError, if non-nil, is invoked (outside
// the dispatch loop's lock) whenever a subscriber handler panics.
func New(onError func(error)) *Hub {
	return &Hub{subs: make(map[string][]*subscription), onError: onError}
}

// Connect registers handler for signal, scoped to events from sender ("" to
// receive from any sender), under key. A later Connect with the same
// (signal, key) replaces the handler without changing dispatch order.
func (h *Hub) Connect(signal, key, sender string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.subs[signal]
	for _, s := range list {
		if s.key == key {
			s.sender = sender
			s.handler = handler
			return
		}
	}
	h.subs[signal] = append(list, &subscription{key: key, sender: sender, handler: handler})
}

// Disconnect removes the subscription registered under key for signal, if
// any. Reports whether a subscription was removed.
func (h *Hub) Disconnect(signal, key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.subs[signal]
	for i, s := range list {
		if s.key == key {
			h.subs[signal] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Publish dispatches an Event synchronously to every matching subscriber,
// strictly in the order they were connected. A subscriber's panic is
// recovered, reported via onError, and does not prevent later subscribers
// from running (spec §6 — ordering and isolation both hold).
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	list := make([]*subscription, len(h.subs[evt.Signal]))
	copy(list, h.subs[evt.Signal])
	h.mu.Unlock()

	for _, s := range list {
		if s.sender != "" && s.sender != evt.Sender {
			continue
		}
		h.dispatchOne(s, evt)
	}
}

// UnhandledSignal is the signal a recovered subscriber panic is
// re-published under, carrying an *UnhandledSignalError payload, so a
// single error-observing subscriber can watch every signal at once
// (spec §6). Not republished recursively if a handler of this signal
// itself panics.
const UnhandledSignal = "signalhub.unhandled_error"

func (h *Hub) dispatchOne(s *subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			err := &UnhandledSignalError{Signal: evt.Signal, Key: s.key, Cause: r}
			if h.onError != nil {
				h.onError(err)
			}
			if evt.Signal != UnhandledSignal {
				h.Publish(Event{Signal: UnhandledSignal, Sender: evt.Sender, At: evt.At, Payload: err})
			}
		}
	}()
	s.handler(evt)
}

// Subscription is a handle for a Connect call made through Subscribe,
// letting the caller cancel it without tracking the signal/key pair
// itself.
type Subscription struct {
	hub    *Hub
	signal string
	key    string
}

// Cancel removes the subscription; after it returns, no further dispatches
// reach the handler (spec §6).
func (s *Subscription) Cancel() { s.hub.Disconnect(s.signal, s.key) }

// Subscribe connects handler to signal under a freshly generated key,
// scoped to sender ("" for any sender), and returns a Subscription the
// caller can Cancel. Prefer Connect directly when the caller wants to
// control or replace a specific key itself.
func (h *Hub) Subscribe(signal, sender string, handler Handler) *Subscription {
	key := uuid.NewString()
	h.Connect(signal, key, sender, handler)
	return &Subscription{hub: h, signal: signal, key: key}
}
