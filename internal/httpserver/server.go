package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server wraps the http.Server that exposes the upload trigger.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port. The write timeout
// must outlast a full upload to the backend.
func New(port int, handler http.Handler, uploadTimeout time.Duration) *Server {
	if uploadTimeout <= 0 {
		uploadTimeout = 2 * time.Minute
	}
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      uploadTimeout + 10*time.Second,
		},
	}
}

// Addr reports the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
