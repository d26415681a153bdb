package api

import (
	"context"
	"net/http"

	"tetris/internal/game"
	"tetris/internal/highscore"
	"tetris/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// GameInterface defines the hosted game methods used by the API.
// This interface enables mocking for tests without spinning up the game loop.
type GameInterface interface {
	// Snapshot returns the latest immutable game state (never nil)
	Snapshot() *game.Snapshot
	// Submit queues a command, returning false when the queue is full or stopped
	Submit(cmd game.Command) bool
	// Stats returns loop counters for monitoring
	Stats() map[string]interface{}
}

// ScoreStore defines the persistent score table behind /api/scores.
// highscore.SQLiteStore implements it.
type ScoreStore interface {
	Top(ctx context.Context, n int) ([]highscore.Entry, error)
	Add(ctx context.Context, entry highscore.Entry) (highscore.Entry, error)
}

// StatsProvider is anything that reports counters for /api/stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Game:   mockGame,
//	    Scores: mockScores,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Game is the hosted game. Game routes are only mounted when set.
	Game GameInterface

	// Scores is the score table. Score routes are only mounted when set.
	Scores ScoreStore

	// EventLog adds event log counters to /api/stats when set.
	EventLog StatsProvider

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, allows localhost on any port.
	CORSOrigins []string

	// APIKey, when set, is required in X-Api-Key to submit scores.
	APIKey string

	// Render controls /api/board.png. Zero value uses render.DefaultOptions.
	Render *render.Options

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies for the router.
type routerHandlers struct {
	game     GameInterface
	scores   ScoreStore
	eventLog StatsProvider
	limiter  *IPRateLimiter
	render   render.Options
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine, which only starts when no RateLimiter is passed in:
//   - No network listeners are opened
//   - No game loop is started
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	r.Use(requestMetrics)
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
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
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", APIKeyHeader},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		game:     cfg.Game,
		scores:   cfg.Scores,
		eventLog: cfg.EventLog,
		limiter:  rateLimiter,
		render:   render.DefaultOptions(),
	}
	if cfg.Render != nil {
		h.render = *cfg.Render
	}

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleGetStats)

		if cfg.Scores != nil {
			r.Get("/scores", h.handleGetScores)
			r.With(RequireAPIKey(cfg.APIKey)).Post("/scores", h.handlePostScore)
		}

		if cfg.Game != nil {
			r.Get("/state", h.handleGetState)
			r.Get("/board.png", h.handleBoardPNG)
			r.Post("/input", h.handleInput)
			r.Post("/reset", h.handleReset)
			r.Put("/player", h.handleSetPlayer)
		}
	})

	return r
}
