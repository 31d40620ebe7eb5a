package api

import (
	"nova-arena/internal/game"
	"nova-arena/internal/rank"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SessionInterface is the slice of the simulation session the API layer
// uses. Kept minimal so handler tests can mock it without running the
// loop.
type SessionInterface interface {
	Snapshot() *game.SessionSnapshot
	StartRound()
	EndRound() game.RoundResult
	RoundActive() bool
	Input() *game.InputAggregator
}

// BoardInterface is the slice of the leaderboard the API layer uses.
type BoardInterface interface {
	Submit(username, gameMode string, score, kills, deaths int) (rank.Entry, error)
	Query(gameMode string, offset, limit int) rank.Page
	Len() int
}

// RouterConfig carries the dependencies for constructing the HTTP
// router. Designed for injection: tests pass mocks and a permissive
// rate limit.
type RouterConfig struct {
	// Session is the simulation session (required).
	Session SessionInterface

	// Board is the leaderboard (required).
	Board BoardInterface

	// EventStats optionally reports event log counters on /api/stats.
	EventStats func() map[string]uint64

	// RateLimiter is an optional pre-built limiter; when nil one is
	// created from RateLimitConfig (or the defaults).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins.
	CORSOrigins []string

	// DisableLogging drops the request logger, for benchmarks.
	DisableLogging bool
}

type routerHandlers struct {
	session    SessionInterface
	board      BoardInterface
	eventStats func() map[string]uint64
}

// NewRouter constructs the router with all middleware and routes. It is
// pure: no goroutines, no listeners, safe for httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS so over-budget requests are rejected
	// as cheaply as possible.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		session:    cfg.Session,
		board:      cfg.Board,
		eventStats: cfg.EventStats,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)

		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Post("/leaderboard", h.handleSubmitScore)

		r.Post("/round/start", h.handleRoundStart)
		r.Post("/round/end", h.handleRoundEnd)
	})

	return r
}
