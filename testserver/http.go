/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
)

// NewTempHTTPServer returns a HTTPServer with a newly created temp
// dir as the docroot.
func NewTempHTTPServer() (*HTTPServer, error) {
	tmpDir, err := os.MkdirTemp("", "http-test-")
	if err != nil {
		return nil, err
	}
	srv := NewHTTPServer(tmpDir)
	return srv, nil
}

// NewHTTPServer returns a HTTPServer with the given docroot set.
func NewHTTPServer(docroot string) *HTTPServer {
	root, err := filepath.Abs(docroot)
	if err != nil {
		panic(err)
	}
	return &HTTPServer{
		docroot:  root,
		requests: make(map[string]int),
	}
}

// HTTPServer is an HTTP server for testing purposes.
// It serves files from the configured docroot, counts the requests made
// per path and offers a lightweight middleware configuration option.
type HTTPServer struct {
	docroot    string
	middleware func(http.Handler) http.Handler
	server     *httptest.Server

	mu       sync.Mutex
	requests map[string]int
}

// WithMiddleware configures the middleware of the HTTPServer, this can for
// example be used to configure Basic Auth credentials. It should be called
// before starting the server, or requires a stop/start cycle.
func (s *HTTPServer) WithMiddleware(m func(handler http.Handler) http.Handler) *HTTPServer {
	s.middleware = m
	return s
}

// Start starts the HTTPServer.
func (s *HTTPServer) Start() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		s.mu.Unlock()

		handler := http.FileServer(http.Dir(s.docroot))
		if s.middleware != nil {
			s.middleware(handler).ServeHTTP(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	}))
}

// Stop stops the HTTPServer, if started.
func (s *HTTPServer) Stop() {
	if s.server != nil {
		s.server.Close()
	}
}

// Root returns the configured docroot of the HTTPServer.
func (s *HTTPServer) Root() string {
	return s.docroot
}

// URL returns the address the HTTPServer is listening at,
// if started.
func (s *HTTPServer) URL() string {
	if s.server != nil {
		return s.server.URL
	}
	return ""
}

// Requests returns the number of requests received for the given path.
func (s *HTTPServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// BasicAuth returns a middleware rejecting requests that do not carry the
// given credentials.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != username || p != password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FailingStatus returns a middleware answering every request with the
// given status code.
func FailingStatus(code int) func(http.Handler) http.Handler {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
	}
}
