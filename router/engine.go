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

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/veloxa-dev/velox/signalhub"
)

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithHub replaces the Engine's default, private signalhub.Hub with one
// shared across other subsystems (e.g. the one a ratelimit.Service
// publishes to), so a single set of subscribers observes both.
func WithHub(hub *signalhub.Hub) EngineOption {
	return func(e *Engine) { e.hub = hub }
}

// WithDrainTimeout bounds how long Shutdown waits for in-flight requests
// to finish before cancelling them (spec §4.4 — "graceful shutdown").
func WithDrainTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.drainTimeout = d }
}

// WithLogger sets the logger used for lifecycle diagnostics (panics
// recovered from the handler chain, shutdown progress).
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithObservability attaches tracing spans and Prometheus collectors to
// every request the engine serves.
func WithObservability(o *Observability) EngineOption {
	return func(e *Engine) { e.obs = o }
}

// Engine drives the spec §4.4 request lifecycle state machine on top of a
// Router: it publishes a signalhub event at every transition, tracks an
// active-requests set so a graceful shutdown can drain in-flight work, and
// turns a panicking handler into a RoutingError event plus a 500 response
// instead of crashing the process.
type Engine struct {
	router *Router
	hub    *signalhub.Hub
	logger *slog.Logger
	obs    *Observability

	mu           sync.Mutex
	active       map[string]context.CancelFunc
	drainTimeout time.Duration

	shuttingDown atomic.Bool
}

// NewEngine wraps router with lifecycle tracking. router need not be
// frozen yet; the first request (or an explicit router.Freeze) does that.
func NewEngine(router *Router, opts ...EngineOption) *Engine {
	e := &Engine{
		router:       router,
		hub:          signalhub.New(nil),
		active:       make(map[string]context.CancelFunc),
		drainTimeout: 30 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hub returns the signalhub.Hub the engine publishes lifecycle events to.
func (e *Engine) Hub() *signalhub.Hub { return e.hub }

// Router returns the underlying Router.
func (e *Engine) Router() *Router { return e.router }

// ActiveRequests reports how many requests are currently in flight —
// inserted in the started transition, removed in finished (spec §5).
func (e *Engine) ActiveRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// ServeHTTP implements http.Handler, running the full lifecycle for one
// request: before_routing, started, matched/not_found (inside Router's
// dispatch), after_routing, finished. A panicking handler is recovered,
// published as RoutingError, and goes on to finished with a 500, skipping
// after_routing.
func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if e.shuttingDown.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	if !e.router.Frozen() {
		if err := e.router.Freeze(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	start := time.Now()
	requestID := uuid.NewString()

	reqCtx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(reqCtx)

	c := e.router.pool.get()
	c.Request = req
	c.Response = newResponse(w)
	c.router = e.router

	span, hasSpan := e.obs.startSpan(c, req.URL.Path)
	e.obs.requestStarted()

	e.hub.Publish(signalhub.Event{
		Signal: SignalBeforeRouting,
		At:     start,
		Payload: BeforeRoutingPayload{
			RequestID: requestID,
			Method:    req.Method,
			Path:      req.URL.Path,
			ClientIP:  c.ClientIP(),
			At:        start,
		},
	})

	e.mu.Lock()
	e.active[requestID] = cancel
	e.mu.Unlock()
	e.hub.Publish(signalhub.Event{
		Signal:  SignalRequestStarted,
		At:      time.Now(),
		Payload: RequestStartedPayload{RequestID: requestID},
	})

	// The matcher settles the route before any handler runs; publish the
	// matched/not_found transition right there so subscribers observe it
	// ahead of handling (spec §4.4), not after the fact.
	matchPublished := false
	c.onMatch = func(c *Context) {
		matchPublished = true
		if c.route != nil {
			e.hub.Publish(signalhub.Event{
				Signal:  SignalRouteMatched,
				At:      time.Now(),
				Payload: RouteMatchedPayload{RequestID: requestID, Route: c.route},
			})
			return
		}
		e.hub.Publish(signalhub.Event{
			Signal:  SignalRouteNotFound,
			At:      time.Now(),
			Payload: RouteNotFoundPayload{RequestID: requestID, Method: req.Method, Path: req.URL.Path},
		})
	}

	panicked := e.runChain(c, requestID)

	if !matchPublished {
		e.hub.Publish(signalhub.Event{
			Signal:  SignalRouteNotFound,
			At:      time.Now(),
			Payload: RouteNotFoundPayload{RequestID: requestID, Method: req.Method, Path: req.URL.Path},
		})
	}

	c.Response.Flush()

	if !panicked {
		e.hub.Publish(signalhub.Event{
			Signal:  SignalAfterRouting,
			At:      time.Now(),
			Payload: AfterRoutingPayload{RequestID: requestID, Route: c.route, Status: c.Response.Status()},
		})
	}

	e.mu.Lock()
	delete(e.active, requestID)
	e.mu.Unlock()
	cancel()

	duration := time.Since(start)
	routeName := req.URL.Path
	if c.route != nil {
		routeName = c.route.Path()
	}
	if hasSpan {
		e.obs.finishSpan(span, c.Response.Status())
	}
	e.obs.recordRequest(routeName, req.Method, c.Response.Status(), duration)
	e.obs.requestFinished()

	e.hub.Publish(signalhub.Event{
		Signal: SignalRequestFinished,
		At:     time.Now(),
		Payload: RequestFinishedPayload{
			RequestID: requestID,
			Route:     c.route,
			Status:    c.Response.Status(),
			Duration:  duration,
		},
	})

	e.router.pool.put(c)
}

// runChain invokes the router's dispatch, recovering a panic from anywhere
// in the middleware/handler chain into a RoutingError event and a 500
// response rather than letting it escape to net/http (which would only log
// it and close the connection, spec §7 — "uncaught exception ... 500 +
// RoutingError event"). It reports whether a panic was recovered.
func (e *Engine) runChain(c *Context, requestID string) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			err := fmt.Errorf("router: panic in handler chain: %v", r)
			c.Error(err)
			if !c.Response.Written() {
				c.Response.WriteHeader(http.StatusInternalServerError)
			}
			e.logger.Error("unhandled panic in request chain", "request_id", requestID, "error", err)
			e.hub.Publish(signalhub.Event{
				Signal:  SignalRoutingError,
				At:      time.Now(),
				Payload: RoutingErrorPayload{RequestID: requestID, Err: err},
			})
		}
	}()
	e.router.dispatch(c)
}

// Shutdown stops accepting new requests and waits for in-flight ones to
// finish, up to the engine's drain timeout or ctx's deadline, whichever is
// shorter; requests still outstanding past that point have their contexts
// cancelled so handlers honoring context cancellation can exit promptly
// (spec §4.4).
func (e *Engine) Shutdown(ctx context.Context) error {
	e.shuttingDown.Store(true)

	deadline := time.Now().Add(e.drainTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if e.ActiveRequests() == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			e.cancelActive()
			return nil
		}
		select {
		case <-ctx.Done():
			e.cancelActive()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) cancelActive() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, cancel := range e.active {
		cancel()
		delete(e.active, id)
	}
}
