package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the websocket hub. Construction
// starts nothing; goroutines and listeners only appear in Start, so
// tests can build a Server and use Router() with httptest.
type Server struct {
	session     SessionInterface
	board       BoardInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates the API server with production defaults.
func NewServer(session SessionInterface, board BoardInterface, eventStats func() map[string]uint64) *Server {
	s := &Server{
		session: session,
		board:   board,
		wsHub:   NewWebSocketHub(session),
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	s.router = NewRouter(RouterConfig{
		Session:     session,
		Board:       board,
		EventStats:  eventStats,
		RateLimiter: s.rateLimiter,
	})

	s.router.Get("/ws", s.wsHub.HandleWebSocket)
	return s
}

// Hub returns the websocket hub, for wiring the session's render hook.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Handle registers an extra route on the server's router, for
// diagnostics endpoints wired up in main.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start launches the hub worker and serves HTTP on addr. Blocks.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	log.Printf("api server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
