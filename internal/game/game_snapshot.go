package game

import (
	"time"

	"tetris/internal/highscore"
)

// Snapshot is an immutable copy of everything a presentation layer reads.
// Arrays are copied by value, so a snapshot never aliases engine state and
// may be handed to other goroutines.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic per publisher
	Timestamp time.Time `json:"timestamp"` // When the snapshot was taken

	Board   Board  `json:"board"`
	Current Matrix `json:"current"`
	Next    Matrix `json:"next"`
	X       int    `json:"x"`
	Y       int    `json:"y"`

	Score        int     `json:"score"`
	Lines        int     `json:"lines"`
	Level        int     `json:"level"`
	GameOver     bool    `json:"gameOver"`
	PlayerName   string  `json:"playerName"`
	FallInterval float64 `json:"fallInterval"`

	HighScores []highscore.Entry `json:"highScores"`
	TopScore   int               `json:"topScore"`
}

// Snapshot captures the current engine state.
func (e *Engine) Snapshot(sequence uint64) *Snapshot {
	return &Snapshot{
		Sequence:     sequence,
		Timestamp:    time.Now(),
		Board:        e.board,
		Current:      e.current,
		Next:         e.next,
		X:            e.x,
		Y:            e.y,
		Score:        e.score,
		Lines:        e.lines,
		Level:        e.Level(),
		GameOver:     e.gameOver,
		PlayerName:   e.playerName,
		FallInterval: e.fallInterval,
		HighScores:   e.highScores.Entries(),
		TopScore:     e.highScores.Best(),
	}
}

// Composite returns the board with the active piece drawn in, the view most
// renderers want. Piece cells above the board are dropped.
func (s *Snapshot) Composite() Board {
	out := s.Board
	s.Current.Cells(func(x, y int, c Cell) {
		gx, gy := s.X+x, s.Y+y
		if InBounds(gx, gy) {
			out[gy][gx] = c
		}
	})
	return out
}
