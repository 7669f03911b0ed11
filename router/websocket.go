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
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketHandler receives an upgraded connection on the request's
// goroutine; the connection is closed automatically when the handler
// returns.
type WebSocketHandler func(c *Context, conn *websocket.Conn)

// WebSocketOption configures the upgrader used by Upgrade / WS.
type WebSocketOption func(*websocket.Upgrader)

// WithReadBufferSize sets the upgrader's read buffer size.
func WithReadBufferSize(n int) WebSocketOption {
	return func(u *websocket.Upgrader) { u.ReadBufferSize = n }
}

// WithWriteBufferSize sets the upgrader's write buffer size.
func WithWriteBufferSize(n int) WebSocketOption {
	return func(u *websocket.Upgrader) { u.WriteBufferSize = n }
}

// WithCheckOrigin overrides the upgrader's origin check. The zero value
// rejects cross-origin upgrades, matching gorilla/websocket's default.
func WithCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(u *websocket.Upgrader) { u.CheckOrigin = fn }
}

// WithHandshakeTimeout bounds how long the upgrade handshake may take.
func WithHandshakeTimeout(d time.Duration) WebSocketOption {
	return func(u *websocket.Upgrader) { u.HandshakeTimeout = d }
}

// Upgrade performs the WebSocket handshake on the current request and
// invokes fn with the resulting connection, closing it when fn returns.
// Intended to be called from inside a route handler registered with GET.
func Upgrade(c *Context, fn WebSocketHandler, opts ...WebSocketOption) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	for _, opt := range opts {
		opt(&upgrader)
	}

	// The buffered Response can't serve as an http.ResponseWriter for a
	// hijack-based protocol upgrade; the upgrader needs the raw transport
	// writer, so flush whatever headers were staged so far and hand it the
	// original writer directly.
	conn, err := upgrader.Upgrade(c.Response.w, c.Request, c.Response.header)
	if err != nil {
		return fmt.Errorf("router: websocket upgrade: %w", err)
	}
	c.Response.wrote = true
	c.Response.flushed = true // hijacked; Flush must not touch the connection
	defer conn.Close()

	fn(c, conn)
	return nil
}

// WS registers a GET route whose handler performs a WebSocket upgrade and
// delegates to fn for the life of the connection.
func (r *Router) WS(path string, fn WebSocketHandler, opts ...WebSocketOption) *Route {
	return r.GET(path, func(c *Context) {
		if err := Upgrade(c, fn, opts...); err != nil {
			c.Error(err)
			c.Status(http.StatusBadRequest)
		}
	})
}
