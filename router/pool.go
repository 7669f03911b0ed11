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

import "sync"

// contextPool recycles Context values across requests. A Context is
// released back to the pool exactly once, at RequestFinished, never held
// by a handler past that point (see Context's thread-safety note).
type contextPool struct {
	pool sync.Pool
}

func newContextPool() *contextPool {
	return &contextPool{
		pool: sync.Pool{New: func() any { return &Context{index: -1} }},
	}
}

func (p *contextPool) get() *Context {
	c, _ := p.pool.Get().(*Context)
	if c == nil {
		c = &Context{index: -1}
	}
	return c
}

func (p *contextPool) put(c *Context) {
	c.reset()
	p.pool.Put(c)
}

// reset clears all per-request state so a pooled Context can't leak data
// between requests. Everything set in initForRequest must be cleared here.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.router = nil
	c.handlers = nil
	c.index = -1
	c.paramCount = 0
	for i := range c.paramKeys {
		c.paramKeys[i] = ""
		c.paramValues[i] = ""
	}
	c.Params = nil
	c.route = nil
	c.routePattern = ""
	c.attrs = nil
	c.aborted = false
	c.errors = nil
	c.body = nil
	c.overrideIP = ""
	c.logger = nil
	c.onMatch = nil
}
