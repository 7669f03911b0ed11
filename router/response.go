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
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// BodyFilter transforms buffered response bytes before they reach the
// client, e.g. compression or response-body redaction.
type BodyFilter func(status int, header http.Header, body []byte) []byte

// Response wraps the transport http.ResponseWriter with buffering so a
// BodyFilter can see (and rewrite) the full body before it is flushed, and
// so double-WriteHeader calls are harmless (spec: "write operations buffer
// until flush or close").
type Response struct {
	w       http.ResponseWriter
	buf     bytes.Buffer
	status  int
	header  http.Header
	wrote   bool // WriteHeader has been called
	flushed bool // Flush has run; later Flush calls are no-ops

	filters []BodyFilter
	cookies map[string]*http.Cookie // last SetCookie per name wins (spec §9(c))
}

func newResponse(w http.ResponseWriter) *Response {
	return &Response{w: w, status: http.StatusOK, header: make(http.Header)}
}

// Header returns the header map that will be sent once the response is
// flushed. Mutating it after Flush/Close has no effect.
func (r *Response) Header() http.Header { return r.header }

// WriteHeader records the status code to use once the response is flushed.
// Calling it more than once keeps the first value, mirroring
// net/http.ResponseWriter's "superfluous WriteHeader" semantics without the
// warning, since buffering means nothing has actually been sent yet.
func (r *Response) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.status = status
	r.wrote = true
}

// Write buffers response bytes; nothing reaches the client until Flush.
func (r *Response) Write(p []byte) (int, error) {
	if !r.wrote {
		r.WriteHeader(http.StatusOK)
	}
	return r.buf.Write(p)
}

// Written reports whether WriteHeader has been called.
func (r *Response) Written() bool { return r.wrote }

// Status returns the status code that will be (or was) written.
func (r *Response) Status() int { return r.status }

// Body returns the bytes buffered so far. The slice aliases the internal
// buffer; callers must not retain it past the request.
func (r *Response) Body() []byte { return r.buf.Bytes() }

// ReplaceBody discards everything buffered so far and rewrites the
// response as status plus body, bypassing WriteHeader's first-call-wins
// rule. It exists for middleware that rewrites a finished response, e.g.
// an ETag 304 or a compressed body.
func (r *Response) ReplaceBody(status int, body []byte) {
	r.status = status
	r.wrote = true
	r.buf.Reset()
	r.buf.Write(body)
}

// AddFilter registers a BodyFilter to run, in registration order, when the
// response is flushed.
func (r *Response) AddFilter(f BodyFilter) { r.filters = append(r.filters, f) }

// SetCookie stages a cookie; a later call with the same Name replaces an
// earlier one instead of producing two Set-Cookie headers (spec §9(c)).
func (r *Response) SetCookie(c *http.Cookie) {
	if r.cookies == nil {
		r.cookies = make(map[string]*http.Cookie, 2)
	}
	r.cookies[c.Name] = c
}

// Flush runs registered filters, writes all staged cookies, status and
// headers, and copies the buffered body to the underlying ResponseWriter.
// Flush is idempotent: only the first call sends anything.
func (r *Response) Flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	if !r.wrote {
		r.WriteHeader(http.StatusOK)
	}

	clear(r.w.Header())
	for k, vs := range r.header {
		for _, v := range vs {
			r.w.Header().Add(k, v)
		}
	}
	for _, c := range r.cookies {
		http.SetCookie(r.w, c)
	}

	body := r.buf.Bytes()
	for _, f := range r.filters {
		body = f(r.status, r.w.Header(), body)
	}

	r.w.WriteHeader(r.status)
	_, err := r.w.Write(body)
	return err
}

// Redirect sets Location and finalizes the response with the given status.
func (r *Response) Redirect(status int, location string) {
	r.Header().Set("Location", location)
	r.WriteHeader(status)
}

// Download streams a file as an attachment, setting Content-Disposition.
// name overrides the filename presented to the client; when empty the
// file's base name is used.
func (r *Response) Download(path, name string) error {
	if name == "" {
		name = filepath.Base(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("router: download %q: %w", path, err)
	}
	r.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	r.Header().Set("Content-Type", "application/octet-stream")
	r.WriteHeader(http.StatusOK)
	_, err = r.buf.Write(data)
	return err
}
