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

import "time"

// Signal names published by Engine as a request moves through the
// lifecycle state machine: accepted -> before_routing -> started ->
// (matched | not_found) -> handling -> after_routing -> finished, with
// error short-circuiting straight to finished (spec §4.4).
const (
	SignalBeforeRouting   = "engine.before_routing"
	SignalRequestStarted  = "engine.request_started"
	SignalRouteMatched    = "engine.route_matched"
	SignalRouteNotFound   = "engine.route_not_found"
	SignalAfterRouting    = "engine.after_routing"
	SignalRequestFinished = "engine.request_finished"
	SignalRoutingError    = "engine.routing_error"
)

// BeforeRoutingPayload is published as the engine begins processing a
// request, before the matcher has run.
type BeforeRoutingPayload struct {
	RequestID string
	Method    string
	Path      string
	ClientIP  string
	At        time.Time
}

// RequestStartedPayload marks a request's entry into the active-requests
// set.
type RequestStartedPayload struct {
	RequestID string
}

// RouteMatchedPayload carries the Route the matcher resolved.
type RouteMatchedPayload struct {
	RequestID string
	Route     *Route
}

// RouteNotFoundPayload is published in place of RouteMatchedPayload when no
// route matches the request (spec: "404 still executes global
// middlewares").
type RouteNotFoundPayload struct {
	RequestID string
	Method    string
	Path      string
}

// AfterRoutingPayload carries the finalized response status once the
// handler chain has run, alongside the (possibly nil) matched route.
type AfterRoutingPayload struct {
	RequestID string
	Route     *Route
	Status    int
}

// RequestFinishedPayload is published exactly once per request, regardless
// of outcome (spec invariant: "RequestFinishedEvent fires for every
// request reaching the engine").
type RequestFinishedPayload struct {
	RequestID string
	Route     *Route
	Status    int
	Duration  time.Duration
}

// RoutingErrorPayload is published when a handler or middleware panics;
// the engine then skips AfterRouting and emits RequestFinished for the
// same request.
type RoutingErrorPayload struct {
	RequestID string
	Err       error
}
