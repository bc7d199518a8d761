package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"grid-clash/internal/grid"
	"grid-clash/internal/view"
)

// ViewInterface is the slice of the view engine the API layer consumes.
// Kept minimal so tests can substitute a stub without a running engine.
type ViewInterface interface {
	// State returns the current render view (grid plus effect pools).
	State() view.State
	// SelectCell forwards a cell-click intent to the external controller.
	SelectCell(row, col int)
}

// BattleInterface is the slice of the simulation the API layer consumes.
type BattleInterface interface {
	// Place puts a new unit on the board.
	Place(typeID, team string, at grid.Coord) (string, error)
	// Turn returns the number of resolved turns.
	Turn() uint64
	// UnitCount returns units on the board, corpses included.
	UnitCount() int
}

// FrameRenderer rasterizes a view state for the spectator frame endpoint.
type FrameRenderer interface {
	RenderPNG(st view.State) ([]byte, error)
}

// RouterConfig carries all dependencies the router needs. Designed for
// dependency injection: tests pass stubs and a permissive rate limit.
type RouterConfig struct {
	View     ViewInterface   // required
	Battle   BattleInterface // required
	Renderer FrameRenderer   // optional; nil disables /api/frame.png

	// RateLimiter is an optional pre-built limiter. If nil, one is created
	// from RateLimitConfig, falling back to DefaultRateLimitConfig.
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the allowed origins. Nil allows any origin;
	// the API carries no credentials.
	CORSOrigins []string

	// DisableLogging drops the request logger middleware (benchmarks).
	DisableLogging bool
}

// NewRouter constructs the HTTP router. No listeners, no background work
// beyond the rate limiter's cleanup loop - safe for httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS so floods are rejected cheaply.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &handlers{
		view:     cfg.View,
		battle:   cfg.Battle,
		renderer: cfg.Renderer,
	}

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.state)
		r.Post("/select", h.selectCell)
		r.Post("/place", h.place)
		if cfg.Renderer != nil {
			r.Get("/frame.png", h.frame)
		}
	})

	MountObservability(r)

	return r
}
