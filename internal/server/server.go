// Package server exposes materials over an HTTP JSON API
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/gohyst/internal/store"
)

// Options configure a Server
type Options struct {
	Rate  float64      // requests per second per client; 0 disables limiting
	Burst int          // request burst per client
	Store *store.Store // checkpoint store; nil disables checkpoint routes
}

// Server holds the material registry and the HTTP routes
type Server struct {
	reg     *registry
	store   *store.Store
	limiter *IPRateLimiter
}

// New creates a server with an empty registry
func New(opts Options) *Server {
	s := &Server{reg: newRegistry(), store: opts.Store}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = NewIPRateLimiter(rate.Limit(opts.Rate), burst)
	}
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	if s.limiter != nil {
		api.Use(s.limiter.LimitMiddleware)
	}

	api.HandleFunc("/materials", s.createMaterial).Methods("POST")
	api.HandleFunc("/materials/{id}", s.getMaterial).Methods("GET")
	api.HandleFunc("/materials/{id}", s.deleteMaterial).Methods("DELETE")
	api.HandleFunc("/materials/{id}/trial", s.setTrial).Methods("POST")
	api.HandleFunc("/materials/{id}/commit", s.commit).Methods("POST")
	api.HandleFunc("/materials/{id}/revert", s.revert).Methods("POST")
	api.HandleFunc("/materials/{id}/reset", s.reset).Methods("POST")
	api.HandleFunc("/materials/{id}/vector", s.vector).Methods("GET")
	api.HandleFunc("/materials/{id}/checkpoint", s.checkpoint).Methods("POST")
	api.HandleFunc("/run", s.run).Methods("POST")
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[SERVER] listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("[SERVER] shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("[SERVER] stopped")
	return <-errCh
}
