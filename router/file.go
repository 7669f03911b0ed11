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
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ServeFile stages path's contents into the response, honoring a Range
// request header (single range only: "bytes=a-b", "bytes=a-", "bytes=-n")
// and If-Modified-Since at one-second resolution (spec §4.6, §9(b)). Like
// the rest of Response, the body is buffered until the engine flushes it.
func (c *Context) ServeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		c.Status(http.StatusNotFound)
		return fmt.Errorf("router: serving file %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return fmt.Errorf("router: stat %q: %w", path, err)
	}
	if info.IsDir() {
		c.Status(http.StatusForbidden)
		return fmt.Errorf("router: %q is a directory", path)
	}

	modTime := info.ModTime().Truncate(time.Second)
	if ifModSince := c.Request.Header.Get("If-Modified-Since"); ifModSince != "" {
		if t, err := http.ParseTime(ifModSince); err == nil && !modTime.After(t) {
			c.Response.WriteHeader(http.StatusNotModified)
			return nil
		}
	}

	size := info.Size()
	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	c.Response.Header().Set("Content-Type", ctype)
	c.Response.Header().Set("Accept-Ranges", "bytes")
	c.Response.Header().Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))

	rng := c.Request.Header.Get("Range")
	if rng == "" {
		c.Response.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		c.Response.WriteHeader(http.StatusOK)
		_, err = io.Copy(c.Response, f)
		return err
	}

	start, end, ok := parseRange(rng, size)
	if !ok {
		c.Response.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		c.Response.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		c.Status(http.StatusInternalServerError)
		return fmt.Errorf("router: seeking %q: %w", path, err)
	}

	length := end - start + 1
	c.Response.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Response.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	c.Response.WriteHeader(http.StatusPartialContent)
	_, err = io.CopyN(c.Response, f, length)
	return err
}

// parseRange parses a single-range "Range: bytes=..." header against a
// file of the given size. Only the first range in the header is honored;
// a malformed or unsatisfiable range reports ok=false (spec: "416 for
// unsatisfiable ranges").
func parseRange(header string, size int64) (start, end int64, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := strings.Split(strings.TrimPrefix(header, prefix), ",")[0]
	spec = strings.TrimSpace(spec)

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return 0, 0, false
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	switch {
	case startStr == "" && endStr == "":
		return 0, 0, false
	case startStr == "":
		// "bytes=-n": last n bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, size > 0
	case endStr == "":
		// "bytes=a-": from a to EOF.
		s, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil || s < 0 || s >= size {
			return 0, 0, false
		}
		return s, size - 1, true
	default:
		s, err1 := strconv.ParseInt(startStr, 10, 64)
		e, err2 := strconv.ParseInt(endStr, 10, 64)
		if err1 != nil || err2 != nil || s < 0 || e < s || s >= size {
			return 0, 0, false
		}
		if e >= size {
			e = size - 1
		}
		return s, e, true
	}
}
