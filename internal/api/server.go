package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"tetris/internal/command"
	"tetris/internal/game"

	"github.com/go-chi/chi/v5"
)

// ServerConfig contains the dependencies of a full API server.
type ServerConfig struct {
	Runner   *game.Runner // Hosted game, nil serves scores only
	Scores   ScoreStore
	EventLog StatsProvider

	CORSOrigins      []string
	APIKey           string
	RateLimit        RateLimitConfig
	CommandRateLimit command.RateLimitConfig
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	runner      *game.Runner
	game        GameInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates a new API server.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{runner: cfg.Runner}

	// A nil *game.Runner must stay a nil interface
	if cfg.Runner != nil {
		s.game = cfg.Runner
	}

	rl := cfg.RateLimit
	if rl.RequestsPerSecond <= 0 {
		rl = DefaultRateLimitConfig
	}
	s.rateLimiter = NewIPRateLimiter(rl)
	s.wsHub = NewWebSocketHub(s.game, cfg.CORSOrigins, cfg.CommandRateLimit)

	s.router = NewRouter(RouterConfig{
		Game:        s.game,
		Scores:      cfg.Scores,
		EventLog:    cfg.EventLog,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
		APIKey:      cfg.APIKey,
	})

	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds routes that need the wsHub instance
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.wsHub.HandleWebSocket)
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
// It blocks until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	if s.game != nil {
		s.runner.Subscribe(s.wsHub)
		s.wsHub.StartBroadcastLoop(s.game)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	if s.game != nil {
		log.Printf("🎮 Live board: http://localhost%s/api/board.png", addr)
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, waits for in-flight ones and stops
// background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.wsHub.Stop()
	s.rateLimiter.Stop()
	return err
}
