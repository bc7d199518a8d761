package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the WebSocket hub.
//
// IMPORTANT: background workers do NOT start until Start() is called. The
// constructor is side-effect free so tests can build a Server and use
// Router() with httptest without goroutines or listeners.
type Server struct {
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter
}

// NewServer builds a server around the view engine, battle, and optional
// renderer.
func NewServer(cfg RouterConfig) *Server {
	s := &Server{
		hub: NewHub(cfg.View),
	}

	if cfg.RateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		cfg.RateLimiter = NewIPRateLimiter(rlCfg)
	}
	s.rateLimiter = cfg.RateLimiter

	s.router = NewRouter(cfg)
	s.router.Get("/ws", s.hub.HandleWS)

	return s
}

// Hub exposes the WebSocket hub so the turn loop can push state after each
// tick.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router returns the handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start launches the hub and serves HTTP. Blocks.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	log.Printf("🌐 API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	s.hub.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
