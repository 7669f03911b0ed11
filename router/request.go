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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// bodyState caches the raw request body on first read. Bytes() returns the
// same buffer on every subsequent call; BodyConsumed flips true the first
// time any byte is read (spec §4.6: "raw bytes are lazily consumed and
// cached").
type bodyState struct {
	bytes    []byte
	consumed bool
	readErr  error
}

// Bytes returns the full request body, reading and caching it on first
// call. Safe to call more than once; later calls are free.
func (c *Context) Bytes() ([]byte, error) {
	if c.body == nil {
		c.body = &bodyState{}
	}
	if c.body.consumed {
		return c.body.bytes, c.body.readErr
	}
	c.body.consumed = true

	if c.Request.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.body.readErr = fmt.Errorf("router: reading request body: %w", err)
		return nil, c.body.readErr
	}
	c.body.bytes = data
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// BodyConsumed reports whether the request body has been read yet.
func (c *Context) BodyConsumed() bool { return c.body != nil && c.body.consumed }

// BindJSON reads and JSON-decodes the request body into dst.
func (c *Context) BindJSON(dst any) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("router: decoding JSON body: %w", err)
	}
	return nil
}

// ErrBodyTooLarge is returned by the body-limit reader once the configured
// cap is exceeded, and is what a bodylimit middleware turns into a 413.
var ErrBodyTooLarge = errors.New("router: request body exceeds configured limit")

// limitedBody wraps an io.ReadCloser, failing fast when the declared
// Content-Length exceeds limit and failing mid-stream (chunked transfer)
// once the accumulated byte count exceeds it — spec §4.6's body-limit
// contract.
type limitedBody struct {
	io.ReadCloser
	remaining int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, ErrBodyTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.ReadCloser.Read(p)
	l.remaining -= int64(n)
	if err == nil && l.remaining <= 0 {
		// Confirm there isn't more data waiting; a single extra byte means
		// the body exceeds the limit even though this Read succeeded.
		var probe [1]byte
		if m, _ := l.ReadCloser.Read(probe[:]); m > 0 {
			return n, ErrBodyTooLarge
		}
	}
	return n, err
}

// ApplyBodyLimit wraps the request body so reads beyond limit bytes fail
// with ErrBodyTooLarge. It rejects immediately, without reading anything,
// when Content-Length already exceeds the limit.
func ApplyBodyLimit(r *http.Request, limit int64) error {
	if limit <= 0 {
		return nil
	}
	if r.ContentLength > limit {
		return ErrBodyTooLarge
	}
	if r.Body != nil {
		r.Body = &limitedBody{ReadCloser: r.Body, remaining: limit}
	}
	return nil
}
