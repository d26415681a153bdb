package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tetris/internal/api"
	"tetris/internal/command"
	"tetris/internal/config"
	"tetris/internal/game"
	"tetris/internal/highscore"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

func main() {
	hostGame := flag.Bool("game", true, "host a live game on /api/state, /api/input and /ws")
	flag.Parse()

	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  TETRIS - SCORE SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	gameCfg := appConfig.Game
	scoresCfg := appConfig.Scores
	serverCfg := appConfig.Server

	port := strconv.Itoa(serverCfg.Port)

	// Score database
	store, err := highscore.OpenSQLite(scoresCfg.DBPath, scoresCfg.Limit)
	if err != nil {
		log.Fatalf("❌ Failed to open score database: %v", err)
	}
	log.Printf("🗄️ Score database: %s", scoresCfg.DBPath)
	if n, err := store.Count(context.Background()); err == nil {
		log.Printf("🏆 %d scores on record", n)
	}

	// Event log
	eventLog := game.NewEventLog()
	if err := eventLog.Start(appConfig.EventLog.Path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	// Hosted game, scored against the same database
	var runner *game.Runner
	if *hostGame {
		engine := game.NewEngine(game.EngineConfig{
			Seed:           gameCfg.Seed,
			FallInterval:   gameCfg.FallInterval,
			HighScoreLimit: scoresCfg.Limit,
			PlayerName:     gameCfg.PlayerName,
		})
		runner = game.NewRunner(engine, store, game.RunnerConfig{
			TickInterval:     gameCfg.TickInterval,
			TickDelta:        gameCfg.TickDelta,
			StoreTimeout:     scoresCfg.Timeout,
			AutoRestartDelay: gameCfg.AutoRestartDelay,
		})
		runner.Subscribe(eventLog)
		log.Printf("🎲 Game seed: %d", engine.Seed())
	}

	// Start debug server
	if !serverCfg.DisableDebugServer {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = "127.0.0.1:" + strconv.Itoa(serverCfg.DebugPort)
		debugCfg.AllowExternal = serverCfg.AllowDebugExternal
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Runner:      runner,
		Scores:      store,
		EventLog:    eventLog,
		CORSOrigins: serverCfg.AllowedOrigins,
		APIKey:      scoresCfg.APIKey,
		RateLimit: api.RateLimitConfig{
			RequestsPerSecond: serverCfg.RateLimitPerSecond,
			Burst:             serverCfg.RateLimitBurst,
		},
		CommandRateLimit: command.RateLimitConfig{
			PerSecond: serverCfg.CommandsPerSecond,
			Burst:     serverCfg.CommandBurst,
		},
	})

	if runner != nil {
		runner.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + port
		log.Printf("🌐 API server on http://localhost%s", addr)
		log.Printf("🏆 Scores: http://localhost%s/api/scores", addr)
		serverErr <- server.Start(addr)
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			log.Printf("❌ Server error: %v", err)
		}
	}

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownGracePeriod)
	defer cancel()

	err = server.Shutdown(ctx)
	if runner != nil {
		runner.Stop()
	}
	eventLog.Stop()
	err = multierr.Append(err, store.Close())
	if err != nil {
		log.Printf("⚠️ Shutdown errors: %v", err)
	}
	log.Println("👋 Goodbye!")
}
