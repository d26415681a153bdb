package main

import (
	"flag"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"tetris/internal/config"
	"tetris/internal/game"
	"tetris/internal/highscore"
	"tetris/internal/tui"
)

func main() {
	debug := flag.Bool("debug", false, "write logs to tetris-debug.log")
	name := flag.String("name", "", "player name (overrides TETRIS_PLAYER)")
	offline := flag.Bool("offline", false, "keep scores in the local file only")
	flag.Parse()

	// The terminal belongs to the UI, so logs go to a file or nowhere
	if *debug {
		f, err := tea.LogToFile("tetris-debug.log", "tetris")
		if err != nil {
			log.Fatalf("❌ Failed to open debug log: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()
	gameCfg := appConfig.Game
	scoresCfg := appConfig.Scores

	playerName := gameCfg.PlayerName
	if *name != "" {
		playerName = *name
	}

	local := highscore.NewFileStore(scoresCfg.FilePath, scoresCfg.Limit)
	var store highscore.Store = local
	if !*offline && scoresCfg.APIURL != "" {
		remote := highscore.NewHTTPStore(highscore.HTTPConfig{
			URL:     scoresCfg.APIURL,
			APIKey:  scoresCfg.APIKey,
			Timeout: scoresCfg.Timeout,
		})
		store = &highscore.Fallback{Primary: remote, Local: local}
		log.Printf("🌐 Score API: %s", remote.URL())
	} else {
		log.Printf("💾 Offline scores: %s", local.Path())
	}

	engine := game.NewEngine(game.EngineConfig{
		Seed:           gameCfg.Seed,
		FallInterval:   gameCfg.FallInterval,
		HighScoreLimit: scoresCfg.Limit,
		PlayerName:     playerName,
	})
	log.Printf("🎲 Game seed: %d", engine.Seed())

	model := tui.NewModel(engine, tui.Config{
		Store:        store,
		TickInterval: gameCfg.TickInterval,
		TickDelta:    gameCfg.TickDelta,
		StoreTimeout: scoresCfg.Timeout,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Printf("❌ Program error: %v", err)
		os.Exit(1)
	}
}
