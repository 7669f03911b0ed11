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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the tracer and metric collectors an Engine attaches
// to every request. Either half can be left zero-valued (a nil tracer or a
// registry with no collectors registered); Engine only uses what's set.
type Observability struct {
	tracer trace.Tracer

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	activeRequests  prometheus.Gauge
}

// NewObservability builds an Observability that traces spans under
// tracerName and registers its collectors on reg. Passing nil for reg skips
// Prometheus registration (tracing-only mode).
func NewObservability(tracerName string, reg prometheus.Registerer) *Observability {
	o := &Observability{
		tracer: otel.Tracer(tracerName),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "velox_request_duration_seconds",
			Help: "Request handling latency by route and status.",
		}, []string{"route", "method", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "velox_requests_total",
			Help: "Total requests handled, by route and status.",
		}, []string{"route", "method", "status"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "velox_active_requests",
			Help: "Requests currently in flight.",
		}),
	}
	if reg != nil {
		reg.MustRegister(o.requestDuration, o.requestTotal, o.activeRequests)
	}
	return o
}

// startSpan opens a span for the request, naming it by the matched route
// pattern once known (callers needing the pre-match name pass the raw path).
func (o *Observability) startSpan(c *Context, name string) (trace.Span, bool) {
	if o == nil || o.tracer == nil {
		return nil, false
	}
	ctx, span := o.tracer.Start(c.Request.Context(), name, trace.WithAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.target", c.Request.URL.Path),
	))
	c.Request = c.Request.WithContext(ctx)
	return span, true
}

func (o *Observability) finishSpan(span trace.Span, status int) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	span.End()
}

func (o *Observability) recordRequest(route, method string, status int, d time.Duration) {
	if o == nil || o.requestDuration == nil {
		return
	}
	label := []string{route, method, http.StatusText(status)}
	o.requestDuration.WithLabelValues(label...).Observe(d.Seconds())
	o.requestTotal.WithLabelValues(label...).Inc()
}

func (o *Observability) requestStarted() {
	if o != nil && o.activeRequests != nil {
		o.activeRequests.Inc()
	}
}

func (o *Observability) requestFinished() {
	if o != nil && o.activeRequests != nil {
		o.activeRequests.Dec()
	}
}
