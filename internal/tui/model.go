// Package tui hosts the game in a terminal with bubbletea.
package tui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tetris/internal/game"
	"tetris/internal/highscore"
)

type tickMsg struct{}

type scoresLoadedMsg struct {
	entries []highscore.Entry
	err     error
}

type scoreSubmittedMsg struct {
	entry highscore.Entry
	err   error
}

// Config holds what a Model needs besides its engine.
type Config struct {
	Store        highscore.Store // nil plays offline with the in-memory table only
	TickInterval time.Duration
	TickDelta    float64
	StoreTimeout time.Duration
}

// DefaultConfig matches the 30ms / 0.03s loop of the hosted runner.
func DefaultConfig() Config {
	return Config{
		TickInterval: 30 * time.Millisecond,
		TickDelta:    game.DefaultTickDelta,
		StoreTimeout: 4 * time.Second,
	}
}

// Model is the bubbletea model. All engine calls happen in Update, so the
// engine is only ever touched from the program's update loop; store calls
// run as commands and report back as messages.
type Model struct {
	engine *game.Engine
	cfg    Config

	width  int
	height int

	paused      bool
	editingName bool
	nameInput   string
	recorded    bool // game over already recorded
	syncing     bool
	status      string
}

// NewModel wraps engine. Zero config fields take DefaultConfig values.
func NewModel(engine *game.Engine, cfg Config) Model {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.TickDelta <= 0 {
		cfg.TickDelta = def.TickDelta
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	return Model{engine: engine, cfg: cfg}
}

// Engine returns the hosted engine.
func (m Model) Engine() *game.Engine { return m.engine }

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.cfg.TickInterval), m.fetchCmd())
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) fetchCmd() tea.Cmd {
	if m.cfg.Store == nil {
		return nil
	}
	store, timeout := m.cfg.Store, m.cfg.StoreTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := store.FetchTop(ctx)
		return scoresLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) submitCmd(entry highscore.Entry) tea.Cmd {
	if m.cfg.Store == nil {
		return nil
	}
	store, timeout := m.cfg.Store, m.cfg.StoreTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return scoreSubmittedMsg{entry: entry, err: store.Submit(ctx, entry)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.paused && !m.editingName {
			m.engine.Tick(m.cfg.TickDelta)
		}
		cmd := m.checkGameOver()
		return m, tea.Batch(tickCmd(m.cfg.TickInterval), cmd)

	case scoresLoadedMsg:
		m.syncing = false
		if msg.err != nil {
			log.Printf("⚠️ High score fetch failed: %v", msg.err)
			m.status = "Offline: scores not synced."
			return m, nil
		}
		m.engine.ApplyHighScores(msg.entries)
		m.status = ""
		return m, nil

	case scoreSubmittedMsg:
		if msg.err != nil {
			log.Printf("⚠️ High score submit failed: %v", msg.err)
			m.status = "Offline: score saved locally."
		}
		m.syncing = true
		return m, m.fetchCmd()

	case tea.KeyMsg:
		if m.editingName {
			return m.updateNameEntry(msg)
		}
		return m.updateGame(msg)
	}
	return m, nil
}

// checkGameOver records the score once per game and starts the submission
func (m *Model) checkGameOver() tea.Cmd {
	if !m.engine.GameOver() || m.recorded {
		return nil
	}
	m.recorded = true
	entry := m.engine.RecordHighScore()
	log.Printf("💀 Game over: %s scored %d", entry.Name, entry.Score)
	if m.cfg.Store == nil {
		return nil
	}
	m.syncing = true
	return m.submitCmd(entry)
}

var keyCommands = map[string]game.CommandType{
	"left":  game.CommandLeft,
	"h":     game.CommandLeft,
	"right": game.CommandRight,
	"l":     game.CommandRight,
	"down":  game.CommandSoftDrop,
	"j":     game.CommandSoftDrop,
	"up":    game.CommandRotate,
	"x":     game.CommandRotate,
	"k":     game.CommandRotate,
	" ":     game.CommandHardDrop,
}

func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "p":
		if !m.engine.GameOver() {
			m.paused = !m.paused
		}
		return m, nil
	case "r":
		m.engine.Reset()
		m.paused = false
		m.recorded = false
		return m, nil
	case "n":
		m.editingName = true
		m.nameInput = ""
		return m, nil
	default:
		t, ok := keyCommands[key]
		if !ok || m.paused {
			return m, nil
		}
		m.engine.Apply(game.Command{Type: t})
		return m, m.checkGameOver()
	}
}

func (m Model) updateNameEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.engine.SetPlayerName(m.nameInput)
		m.editingName = false
	case tea.KeyEsc:
		m.editingName = false
	case tea.KeyBackspace:
		if r := []rune(m.nameInput); len(r) > 0 {
			m.nameInput = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		if len([]rune(m.nameInput)) < highscore.MaxNameLength {
			m.nameInput += string(msg.Runes)
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}
