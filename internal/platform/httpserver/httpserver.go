package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with sane timeouts so main doesn't repeat them.
type Server struct {
	srv *http.Server
}

func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (s *Server) ListenAndServe() error { return s.srv.ListenAndServe() }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
