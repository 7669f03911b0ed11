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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDispatchesInSubscriptionOrder(t *testing.T) {
	h := New(nil)
	var order []string
	h.Connect("sig", "a", "", func(Event) { order = append(order, "a") })
	h.Connect("sig", "b", "", func(Event) { order = append(order, "b") })
	h.Connect("sig", "c", "", func(Event) { order = append(order, "c") })

	h.Publish(Event{Signal: "sig"})
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestConnectSameKeyReplacesHandlerKeepsPosition(t *testing.T) {
	h := New(nil)
	var order []string
	h.Connect("sig", "a", "", func(Event) { order = append(order, "a-v1") })
	h.Connect("sig", "b", "", func(Event) { order = append(order, "b") })
	h.Connect("sig", "a", "", func(Event) { order = append(order, "a-v2") })

	h.Publish(Event{Signal: "sig"})
	assert.Equal(t, []string{"a-v2", "b"}, order)
}

func TestDisconnectRemovesSubscription(t *testing.T) {
	h := New(nil)
	called := false
	h.Connect("sig", "a", "", func(Event) { called = true })

	removed := h.Disconnect("sig", "a")
	assert.True(t, removed)

	h.Publish(Event{Signal: "sig"})
	assert.False(t, called)

	assert.False(t, h.Disconnect("sig", "a"))
}

func TestSenderScopingFiltersSubscribers(t *testing.T) {
	h := New(nil)
	var got []string
	h.Connect("sig", "a", "service-a", func(e Event) { got = append(got, e.Sender) })
	h.Connect("sig", "b", "", func(e Event) { got = append(got, "any:"+e.Sender) })

	h.Publish(Event{Signal: "sig", Sender: "service-b"})
	assert.Equal(t, []string{"any:service-b"}, got)

	got = nil
	h.Publish(Event{Signal: "sig", Sender: "service-a"})
	assert.Equal(t, []string{"service-a", "any:service-a"}, got)
}

func TestSubscribeReturnsCancellableSubscription(t *testing.T) {
	h := New(nil)
	called := false
	sub := h.Subscribe("sig", "", func(Event) { called = true })

	sub.Cancel()
	h.Publish(Event{Signal: "sig"})
	assert.False(t, called)
}

func TestPanicInHandlerIsContainedAndRepublishedAsUnhandledSignal(t *testing.T) {
	h := New(nil)
	var unhandled *UnhandledSignalError
	var laterRan bool

	h.Connect(UnhandledSignal, "observer", "", func(e Event) {
		err, ok := e.Payload.(*UnhandledSignalError)
		require.True(t, ok)
		unhandled = err
	})
	h.Connect("sig", "boom", "", func(Event) { panic("kaboom") })
	h.Connect("sig", "after", "", func(Event) { laterRan = true })

	assert.NotPanics(t, func() {
		h.Publish(Event{Signal: "sig"})
	})

	require.NotNil(t, unhandled)
	assert.Equal(t, "sig", unhandled.Signal)
	assert.True(t, laterRan, "a later subscriber must still run after an earlier one panics")
}

func TestUnhandledSignalPanicDoesNotRecurse(t *testing.T) {
	h := New(nil)
	calls := 0
	h.Connect(UnhandledSignal, "observer", "", func(Event) {
		calls++
		panic("observer itself panics")
	})
	h.Connect("sig", "boom", "", func(Event) { panic("kaboom") })

	assert.NotPanics(t, func() {
		h.Publish(Event{Signal: "sig"})
	})
	assert.Equal(t, 1, calls, "a panicking UnhandledSignal handler must not re-trigger itself")
}

func TestOnErrorCallbackInvokedOnPanic(t *testing.T) {
	var captured error
	h := New(func(err error) { captured = err })
	h.Connect("sig", "boom", "", func(Event) { panic("kaboom") })

	h.Publish(Event{Signal: "sig"})
	require.Error(t, captured)
	assert.Contains(t, captured.Error(), "kaboom")
}
