package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/angeloszaimis/gemini-gateway/config"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultOptions leaves room in WriteTimeout for slow inference calls.
func DefaultOptions() Options {
	return Options{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps http.Server with address validation and graceful shutdown.
type Server struct {
	server *http.Server
}

// New creates a new HTTP server with the given address and handler.
// The address is validated before creating the server.
func New(addr string, handler http.Handler, opts Options) (*Server, error) {
	if err := config.ValidateHostPort(addr); err != nil {
		return nil, err
	}

	srv := &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}

	return srv, nil
}

// Start begins listening for HTTP requests.
// Returns an error unless the server is shut down cleanly.
func (s *Server) Start() error {
	return s.serve(s.server.ListenAndServe())
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.serve(s.server.Serve(ln))
}

func (s *Server) serve(err error) error {
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server, waiting at most five seconds
// for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
