package game

import (
	"math"
	"math/rand"
	"time"

	"tetris/internal/highscore"
)

const (
	DefaultFallInterval = 0.5  // Seconds between gravity steps at level 1
	MinFallInterval     = 0.05 // Gravity never gets faster than this
	FallIntervalStep    = 0.02 // Interval reduction per cleared row
	DefaultTickDelta    = 0.03 // Accumulator step per Tick call at 30ms
	LinesPerLevel       = 10
)

// SpawnX is the column of the piece bounding box at spawn.
const SpawnX = Width/2 - 2

// lineScores indexes points by rows cleared in a single lock.
var lineScores = [...]int{0, 100, 300, 500, 800}

// ScoreForLines returns the points awarded for clearing n rows at once.
func ScoreForLines(n int) int {
	if n < 0 || n >= len(lineScores) {
		return 0
	}
	return lineScores[n]
}

// EngineConfig holds construction options for an Engine.
type EngineConfig struct {
	Seed           int64   // RNG seed; 0 picks a time-based seed
	FallInterval   float64 // Initial gravity interval in seconds; 0 uses DefaultFallInterval
	HighScoreLimit int     // Cached high-score entries; 0 uses highscore.DefaultLimit
	PlayerName     string  // Normalized with highscore.NormalizeName
}

type listenerEntry struct {
	id       int
	listener Listener
}

// Engine is the game state machine. It is advanced by Tick and input
// operations and is NOT safe for concurrent use: hosts serialize all calls
// (see Runner).
type Engine struct {
	board   Board
	current Matrix
	next    Matrix
	x, y    int

	score    int
	lines    int
	gameOver bool

	initialInterval float64
	fallInterval    float64
	accumulator     float64

	playerName string
	highScores *highscore.Leaderboard

	listeners  []listenerEntry
	listenerID int

	rng  *rand.Rand
	seed int64
}

// NewEngine creates an engine and starts the first game.
func NewEngine(cfg EngineConfig) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	interval := cfg.FallInterval
	if interval <= 0 {
		interval = DefaultFallInterval
	}

	e := &Engine{
		initialInterval: interval,
		playerName:      highscore.NormalizeName(cfg.PlayerName),
		highScores:      highscore.NewLeaderboard(cfg.HighScoreLimit),
		rng:             rand.New(rand.NewSource(seed)),
		seed:            seed,
	}
	e.Reset()
	return e
}

// Subscribe registers a listener and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.listenerID++
	id := e.listenerID
	e.listeners = append(e.listeners, listenerEntry{id: id, listener: l})
	return func() {
		// Copy so an emit ranging over the old slice is not disturbed
		kept := make([]listenerEntry, 0, len(e.listeners))
		for _, entry := range e.listeners {
			if entry.id != id {
				kept = append(kept, entry)
			}
		}
		e.listeners = kept
	}
}

func (e *Engine) emit(eventType EventType, cleared int) {
	if len(e.listeners) == 0 {
		return
	}
	ev := NewEvent(eventType)
	ev.Score = e.score
	ev.Lines = e.lines
	ev.Level = e.Level()
	ev.GameOver = e.gameOver
	ev.Cleared = cleared
	for _, entry := range e.listeners {
		entry.listener.OnEvent(ev)
	}
}

// Reset clears the board and counters and spawns a fresh piece.
func (e *Engine) Reset() {
	e.board = Board{}
	e.next = MatrixFor(RandomShape(e.rng))
	e.spawn()
	e.setScore(0)
	e.setLines(0)
	e.accumulator = 0
	e.fallInterval = e.initialInterval
	e.setGameOver(false)
	e.emit(EventTypeReset, 0)
}

// spawn promotes the next piece and draws a new one. A spawn that collides
// ends the game but leaves the board for the host to inspect.
func (e *Engine) spawn() {
	e.current = e.next
	e.next = MatrixFor(RandomShape(e.rng))
	e.x = SpawnX
	e.y = 0
	if e.CheckCollision(e.x, e.y, e.current) {
		e.setGameOver(true)
	}
}

// Tick advances gravity by delta seconds and reports whether a gravity step
// happened, i.e. whether the presentation should refresh.
func (e *Engine) Tick(delta float64) bool {
	if e.gameOver {
		return false
	}
	e.accumulator += delta
	if e.accumulator < e.fallInterval {
		return false
	}
	e.accumulator = 0
	if !e.TryMove(0, 1) {
		e.lock()
	}
	return true
}

// TryMove translates the current piece when the target is free.
func (e *Engine) TryMove(dx, dy int) bool {
	if e.gameOver {
		return false
	}
	if e.CheckCollision(e.x+dx, e.y+dy, e.current) {
		return false
	}
	e.x += dx
	e.y += dy
	return true
}

// TryRotate turns the current piece clockwise in place. There are no wall
// kicks: a blocked rotation leaves the piece as it was.
func (e *Engine) TryRotate() bool {
	if e.gameOver {
		return false
	}
	rotated := e.current.Rotate()
	if e.CheckCollision(e.x, e.y, rotated) {
		return false
	}
	e.current = rotated
	return true
}

// HardDrop drops the piece to its resting row and locks it.
// Returns false once the game is over.
func (e *Engine) HardDrop() bool {
	if e.gameOver {
		return false
	}
	for e.TryMove(0, 1) {
	}
	e.lock()
	return true
}

// CheckCollision reports whether piece m at origin (px, py) overlaps a wall,
// the floor or settled blocks. Rows above the board only test the side walls.
func (e *Engine) CheckCollision(px, py int, m Matrix) bool {
	for y := 0; y < PieceSize; y++ {
		for x := 0; x < PieceSize; x++ {
			if m[y][x].Empty() {
				continue
			}
			gx := px + x
			gy := py + y
			if gx < 0 || gx >= Width || gy >= Height {
				return true
			}
			if gy >= 0 && !e.board[gy][gx].Empty() {
				return true
			}
		}
	}
	return false
}

// lock merges the piece, clears rows, scores and spawns the next piece.
func (e *Engine) lock() int {
	e.merge()
	cleared := e.board.clearFullRows()
	if cleared > 0 {
		e.setScore(e.score + ScoreForLines(cleared))
		e.setLines(e.lines + cleared)
		e.fallInterval = math.Max(MinFallInterval, e.fallInterval-FallIntervalStep*float64(cleared))
	}
	e.emit(EventTypePieceLocked, cleared)
	e.spawn()
	return cleared
}

func (e *Engine) merge() {
	e.current.Cells(func(x, y int, c Cell) {
		gx := e.x + x
		gy := e.y + y
		if InBounds(gx, gy) {
			e.board[gy][gx] = c
		}
	})
}

func (e *Engine) setScore(v int) {
	if e.score == v {
		return
	}
	e.score = v
	e.emit(EventTypeScoreChanged, 0)
}

func (e *Engine) setLines(v int) {
	if e.lines == v {
		return
	}
	e.lines = v
	e.emit(EventTypeLinesChanged, 0)
	e.emit(EventTypeLevelChanged, 0)
}

func (e *Engine) setGameOver(v bool) {
	if e.gameOver == v {
		return
	}
	e.gameOver = v
	e.emit(EventTypeGameOver, 0)
}

// Level is derived from cleared lines and never stored.
func (e *Engine) Level() int { return e.lines/LinesPerLevel + 1 }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Lines returns the number of rows cleared this game.
func (e *Engine) Lines() int { return e.lines }

// GameOver reports whether the last spawn collided.
func (e *Engine) GameOver() bool { return e.gameOver }

// FallInterval returns the current gravity interval in seconds.
func (e *Engine) FallInterval() float64 { return e.fallInterval }

// Seed returns the RNG seed, so a game can be replayed.
func (e *Engine) Seed() int64 { return e.seed }

// Board returns a copy of the grid.
func (e *Engine) Board() Board { return e.board }

// Current returns a copy of the active piece matrix.
func (e *Engine) Current() Matrix { return e.current }

// Next returns a copy of the queued piece matrix.
func (e *Engine) Next() Matrix { return e.next }

// Position returns the board origin of the active piece box.
func (e *Engine) Position() (x, y int) { return e.x, e.y }

// PlayerName returns the normalized name recorded with high scores.
func (e *Engine) PlayerName() string { return e.playerName }

// Cell returns the settled value at (x, y), 0 outside the board.
func (e *Engine) Cell(x, y int) Cell { return e.cellAt(x, y) }

// HighScores returns a copy of the cached table.
func (e *Engine) HighScores() []highscore.Entry { return e.highScores.Entries() }

func (e *Engine) cellAt(x, y int) Cell {
	if !InBounds(x, y) {
		return 0
	}
	return e.board[y][x]
}

// SetPlayerName stores a sanitized player name.
func (e *Engine) SetPlayerName(name string) {
	e.playerName = highscore.NormalizeName(name)
}

// TopScore returns the best cached high score, 0 when none are known.
func (e *Engine) TopScore() int { return e.highScores.Best() }

// RecordHighScore inserts the current player and score into the local cache
// and returns the entry so the host can submit it remotely.
func (e *Engine) RecordHighScore() highscore.Entry {
	entry := highscore.Entry{Name: e.playerName, Score: e.score}
	e.highScores.Insert(entry)
	e.emit(EventTypeHighScoresChanged, 0)
	return entry
}

// ApplyHighScores replaces the cache with a fetched table. Later calls win.
// A nil table (a remote null) keeps the current cache; an empty one clears it.
func (e *Engine) ApplyHighScores(entries []highscore.Entry) {
	if entries == nil {
		return
	}
	e.highScores.Replace(entries)
	e.emit(EventTypeHighScoresChanged, 0)
}
