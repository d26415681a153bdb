package game

import (
	"math"
	"testing"

	"tetris/internal/highscore"
)

func newTestEngine() *Engine {
	return NewEngine(EngineConfig{Seed: 7, PlayerName: "tester"})
}

// place swaps the active piece for a known shape at a known origin.
func place(e *Engine, m Matrix, x, y int) {
	e.current = m
	e.x, e.y = x, y
}

func verticalI() Matrix { return MatrixFor(ShapeI).Rotate() }

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) OnEvent(ev Event) { r.events = append(r.events, ev) }

func (r *eventRecorder) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last(t EventType) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// TestNewEngine verifies the initial state of a fresh game.
func TestNewEngine(t *testing.T) {
	e := newTestEngine()

	if e.Score() != 0 || e.Lines() != 0 || e.Level() != 1 {
		t.Errorf("counters = %d/%d/%d, want 0/0/1", e.Score(), e.Lines(), e.Level())
	}
	if e.GameOver() {
		t.Error("new game should not be over")
	}
	if e.FallInterval() != DefaultFallInterval {
		t.Errorf("FallInterval = %v, want %v", e.FallInterval(), DefaultFallInterval)
	}
	if x, y := e.Position(); x != SpawnX || y != 0 {
		t.Errorf("Position = (%d,%d), want (%d,0)", x, y, SpawnX)
	}
	if e.Current().Empty() || e.Next().Empty() {
		t.Error("current and next pieces should be set")
	}
	if e.PlayerName() != "tester" {
		t.Errorf("PlayerName = %q", e.PlayerName())
	}
	if e.Seed() != 7 {
		t.Errorf("Seed = %d", e.Seed())
	}
	b := e.Board()
	if b.Filled() != 0 {
		t.Error("board should start empty")
	}
}

func TestSameSeedSamePieces(t *testing.T) {
	a := NewEngine(EngineConfig{Seed: 42})
	b := NewEngine(EngineConfig{Seed: 42})
	for i := 0; i < 10; i++ {
		if a.Current() != b.Current() || a.Next() != b.Next() {
			t.Fatalf("piece %d differs for equal seeds", i)
		}
		a.HardDrop()
		b.HardDrop()
	}
}

func TestScoreForLines(t *testing.T) {
	tests := []struct {
		lines int
		want  int
	}{
		{0, 0},
		{1, 100},
		{2, 300},
		{3, 500},
		{4, 800},
		{5, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := ScoreForLines(tt.lines); got != tt.want {
			t.Errorf("ScoreForLines(%d) = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

// TestCheckCollision covers each kind of obstacle plus the open rows
// above the board.
func TestCheckCollision(t *testing.T) {
	e := newTestEngine()
	e.board[10][4] = 1
	o := MatrixFor(ShapeO) // occupies box columns 1-2, rows 0-1

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"spawn", 3, 0, false},
		{"resting on floor", 3, 18, false},
		{"through floor", 3, 19, true},
		{"empty column past left wall", -1, 0, false},
		{"left wall", -2, 0, true},
		{"right edge", 7, 0, false},
		{"right wall", 8, 0, true},
		{"above board", 3, -1, false},
		{"far above board", 3, -5, false},
		{"settled block", 3, 9, true},
		{"settled block at right cell", 2, 9, true},
		{"clear of settled block", 5, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CheckCollision(tt.x, tt.y, o)
			if got != tt.want {
				t.Errorf("CheckCollision(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
			if again := e.CheckCollision(tt.x, tt.y, o); again != got {
				t.Error("CheckCollision is not deterministic")
			}
		})
	}
}

// TestOPieceFallsToFloor drops an O from its spawn box one row at a time.
// The O fills the top two rows of its box, so it rests after 18 steps.
func TestOPieceFallsToFloor(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, 0)

	for i := 1; i <= Height-2; i++ {
		if !e.TryMove(0, 1) {
			t.Fatalf("move %d failed before reaching the floor", i)
		}
	}
	if e.TryMove(0, 1) {
		t.Fatal("move past the floor succeeded")
	}
	if _, y := e.Position(); y != Height-2 {
		t.Errorf("y = %d, want %d", y, Height-2)
	}

	b := e.Board()
	if b.Filled() != 0 {
		t.Error("moving must not touch the board")
	}
}

// TestIPieceSingleLine fills row 19 except column 0 and drops a vertical I there.
func TestIPieceSingleLine(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)

	fillRow(&e.board, Height-1, 0)
	// The vertical I sits in box column 2
	place(e, verticalI(), -2, 0)

	if !e.HardDrop() {
		t.Fatal("HardDrop failed")
	}
	if e.Score() != 100 {
		t.Errorf("Score = %d, want 100", e.Score())
	}
	if e.Lines() != 1 {
		t.Errorf("Lines = %d, want 1", e.Lines())
	}
	for y := Height - 3; y < Height; y++ {
		if e.Cell(0, y) != ShapeI.Color() {
			t.Errorf("cell (0,%d) = %d, want I remainder", y, e.Cell(0, y))
		}
	}
	if e.Cell(1, Height-1) != 0 {
		t.Error("cleared row should be gone")
	}

	ev, ok := rec.last(EventTypePieceLocked)
	if !ok || ev.Cleared != 1 {
		t.Errorf("PieceLocked event = %+v, %v", ev, ok)
	}
	if ev, ok := rec.last(EventTypeScoreChanged); !ok || ev.Score != 100 {
		t.Errorf("ScoreChanged event = %+v, %v", ev, ok)
	}
}

func TestTwoLineClearShiftsByTwo(t *testing.T) {
	e := newTestEngine()
	fillRow(&e.board, 19, 0)
	fillRow(&e.board, 18, 0)
	e.board[17][5] = 6
	place(e, verticalI(), -2, 0)

	e.HardDrop()

	if e.Score() != 300 || e.Lines() != 2 {
		t.Fatalf("score/lines = %d/%d, want 300/2", e.Score(), e.Lines())
	}
	if e.Cell(5, 19) != 6 {
		t.Error("marker should have moved down two rows")
	}
	if e.Cell(0, 19) == 0 || e.Cell(0, 18) == 0 || e.Cell(0, 17) != 0 {
		t.Error("I remainder should occupy rows 18-19 of column 0")
	}
}

func TestFourLineClear(t *testing.T) {
	e := newTestEngine()
	for y := 16; y < Height; y++ {
		fillRow(&e.board, y, 0)
	}
	place(e, verticalI(), -2, 0)

	e.HardDrop()

	if e.Score() != 800 || e.Lines() != 4 {
		t.Fatalf("score/lines = %d/%d, want 800/4", e.Score(), e.Lines())
	}
	b := e.Board()
	if b.Filled() != 0 {
		t.Errorf("board should be empty, has %d cells", b.Filled())
	}
}

func TestLockWithoutClear(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)
	place(e, MatrixFor(ShapeO), SpawnX, 0)

	e.HardDrop()

	if e.Score() != 0 || e.Lines() != 0 {
		t.Errorf("score/lines = %d/%d, want 0/0", e.Score(), e.Lines())
	}
	b := e.Board()
	if b.Filled() != 4 {
		t.Errorf("Filled = %d, want 4", b.Filled())
	}
	if rec.count(EventTypeScoreChanged) != 0 {
		t.Error("no ScoreChanged expected when nothing cleared")
	}
	if x, y := e.Position(); x != SpawnX || y != 0 {
		t.Errorf("next piece at (%d,%d), want spawn", x, y)
	}
}

func TestFallIntervalShrinksWithFloor(t *testing.T) {
	e := newTestEngine()
	fillRow(&e.board, 19, 0)
	place(e, verticalI(), -2, 0)
	e.HardDrop()

	if want := DefaultFallInterval - FallIntervalStep; math.Abs(e.FallInterval()-want) > 1e-9 {
		t.Errorf("FallInterval = %v, want %v", e.FallInterval(), want)
	}

	e.fallInterval = 0.06
	e.board = Board{}
	fillRow(&e.board, 19, 0)
	place(e, verticalI(), -2, 0)
	e.HardDrop()

	if e.FallInterval() != MinFallInterval {
		t.Errorf("FallInterval = %v, want floor %v", e.FallInterval(), MinFallInterval)
	}
}

func TestLevelFromLines(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)

	e.lines = LinesPerLevel - 1
	fillRow(&e.board, 19, 0)
	place(e, verticalI(), -2, 0)
	e.HardDrop()

	if e.Level() != 2 {
		t.Errorf("Level = %d, want 2", e.Level())
	}
	ev, ok := rec.last(EventTypeLevelChanged)
	if !ok || ev.Level != 2 {
		t.Errorf("LevelChanged event = %+v, %v", ev, ok)
	}
}

// TestGravity verifies the accumulator drops the piece exactly once per interval.
func TestGravity(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, 0)

	for i := 0; i < 16; i++ {
		if e.Tick(DefaultTickDelta) {
			t.Fatalf("tick %d stepped early", i+1)
		}
	}
	if _, y := e.Position(); y != 0 {
		t.Fatalf("y = %d before the interval elapsed", y)
	}
	if !e.Tick(DefaultTickDelta) {
		t.Fatal("17th tick should step")
	}
	if _, y := e.Position(); y != 1 {
		t.Errorf("y = %d, want 1", y)
	}
}

func TestGravityIsMonotonic(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, 0)

	lastY := 0
	for i := 0; i < 1000; i++ {
		e.Tick(DefaultTickDelta)
		b := e.Board()
		if b.Filled() > 0 {
			return // locked
		}
		_, y := e.Position()
		if y < lastY {
			t.Fatalf("piece moved up from %d to %d", lastY, y)
		}
		lastY = y
	}
	t.Fatal("piece never locked")
}

func TestTickLocksOnFloor(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, Height-2)

	if !e.Tick(e.FallInterval()) {
		t.Fatal("tick at the interval should report a step")
	}
	b := e.Board()
	if b.Filled() != 4 {
		t.Errorf("Filled = %d, want 4 after lock", b.Filled())
	}
}

func TestGameOverAtSpawn(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)

	for x := SpawnX; x < SpawnX+PieceSize; x++ {
		e.board[0][x] = 1
		e.board[1][x] = 1
	}
	e.spawn()

	if !e.GameOver() {
		t.Fatal("colliding spawn should end the game")
	}
	if ev, ok := rec.last(EventTypeGameOver); !ok || !ev.GameOver {
		t.Errorf("GameOver event = %+v, %v", ev, ok)
	}

	before := e.Board()
	x, y := e.Position()
	if e.Tick(10) {
		t.Error("Tick should not step after game over")
	}
	if e.TryMove(1, 0) || e.TryRotate() || e.HardDrop() {
		t.Error("input should be refused after game over")
	}
	if e.Board() != before {
		t.Error("board changed after game over")
	}
	if nx, ny := e.Position(); nx != x || ny != y {
		t.Error("piece moved after game over")
	}
}

func TestStackingEndsGame(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 200 && !e.GameOver(); i++ {
		e.HardDrop()
	}
	if !e.GameOver() {
		t.Fatal("stacking in the spawn columns should end the game")
	}
}

func TestReset(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)

	fillRow(&e.board, 19, 0)
	place(e, verticalI(), -2, 0)
	e.HardDrop()
	for i := 0; i < 200 && !e.GameOver(); i++ {
		e.HardDrop()
	}

	e.Reset()

	if e.Score() != 0 || e.Lines() != 0 || e.GameOver() {
		t.Error("Reset should clear counters and the game-over flag")
	}
	if e.FallInterval() != DefaultFallInterval {
		t.Errorf("FallInterval = %v after reset", e.FallInterval())
	}
	b := e.Board()
	if b.Filled() != 0 {
		t.Error("Reset should clear the board")
	}
	if ev, ok := rec.last(EventTypeGameOver); !ok || ev.GameOver {
		t.Error("Reset should emit GameOver(false)")
	}
	if rec.count(EventTypeReset) != 1 {
		t.Errorf("Reset events = %d, want 1", rec.count(EventTypeReset))
	}
}

func TestTryRotate(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeI), SpawnX, 0)

	if !e.TryRotate() {
		t.Fatal("rotation in open space should succeed")
	}
	if e.Current() != verticalI() {
		t.Error("piece should be vertical")
	}

	// Against the left wall a horizontal I does not fit
	place(e, verticalI(), -2, 5)
	if e.TryRotate() {
		t.Error("rotation into the wall should fail")
	}
	if e.Current() != verticalI() {
		t.Error("failed rotation changed the piece")
	}
}

func TestUnsubscribe(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	unsubscribe := e.Subscribe(rec)
	unsubscribe()

	e.Reset()
	if len(rec.events) != 0 {
		t.Errorf("got %d events after unsubscribe", len(rec.events))
	}
}

// TestUnsubscribeDuringEmit removes a listener from inside its own callback;
// the listeners after it must each still see the event exactly once.
func TestUnsubscribeDuringEmit(t *testing.T) {
	e := newTestEngine()
	var unsubscribe func()
	calls := 0
	unsubscribe = e.Subscribe(ListenerFunc(func(Event) {
		calls++
		unsubscribe()
	}))
	second := &eventRecorder{}
	third := &eventRecorder{}
	e.Subscribe(second)
	e.Subscribe(third)

	e.Reset()
	e.Reset()

	if calls != 1 {
		t.Errorf("unsubscribed listener called %d times, want 1", calls)
	}
	for name, rec := range map[string]*eventRecorder{"second": second, "third": third} {
		if n := rec.count(EventTypeReset); n != 2 {
			t.Errorf("%s listener saw %d resets, want 2", name, n)
		}
	}
}

func TestApplyCommands(t *testing.T) {
	tests := []struct {
		cmd   Command
		want  bool
		check func(*Engine) bool
	}{
		{Command{Type: CommandLeft}, true, func(e *Engine) bool { x, _ := e.Position(); return x == SpawnX-1 }},
		{Command{Type: CommandRight}, true, func(e *Engine) bool { x, _ := e.Position(); return x == SpawnX+1 }},
		{Command{Type: CommandSoftDrop}, true, func(e *Engine) bool { _, y := e.Position(); return y == 1 }},
		{Command{Type: CommandRotate}, true, func(e *Engine) bool { return e.Current() == MatrixFor(ShapeT).Rotate() }},
		{Command{Type: CommandHardDrop}, true, func(e *Engine) bool { b := e.Board(); return b.Filled() == 4 }},
		{Command{Type: CommandReset}, true, func(e *Engine) bool { return e.Score() == 0 }},
		{Command{Type: CommandSetName, Name: " zed "}, true, func(e *Engine) bool { return e.PlayerName() == "zed" }},
		{Command{Type: CommandUnknown}, false, func(e *Engine) bool { return true }},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Type.String(), func(t *testing.T) {
			e := newTestEngine()
			place(e, MatrixFor(ShapeT), SpawnX, 0)
			if got := e.Apply(tt.cmd); got != tt.want {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
			if !tt.check(e) {
				t.Error("state check failed")
			}
		})
	}
}

func TestHighScores(t *testing.T) {
	e := newTestEngine()
	rec := &eventRecorder{}
	e.Subscribe(rec)

	if e.TopScore() != 0 {
		t.Errorf("TopScore = %d, want 0", e.TopScore())
	}

	e.ApplyHighScores([]highscore.Entry{
		{Name: "low", Score: 10},
		{Name: "high", Score: 900},
	})
	if e.TopScore() != 900 {
		t.Errorf("TopScore = %d, want 900", e.TopScore())
	}
	if hs := e.HighScores(); len(hs) != 2 || hs[0].Name != "high" {
		t.Errorf("HighScores = %+v", hs)
	}

	e.score = 1000
	e.SetPlayerName("   ")
	entry := e.RecordHighScore()
	if entry.Name != highscore.DefaultPlayerName || entry.Score != 1000 {
		t.Errorf("entry = %+v", entry)
	}
	if e.TopScore() != 1000 {
		t.Errorf("TopScore = %d, want 1000", e.TopScore())
	}
	if rec.count(EventTypeHighScoresChanged) != 2 {
		t.Errorf("HighScoresChanged events = %d, want 2", rec.count(EventTypeHighScoresChanged))
	}

	// A null table from the remote keeps what is cached
	e.ApplyHighScores(nil)
	if e.TopScore() != 1000 || len(e.HighScores()) != 3 {
		t.Errorf("ApplyHighScores(nil) changed the cache: %+v", e.HighScores())
	}

	// An empty table replaces the cache wholesale
	e.ApplyHighScores([]highscore.Entry{})
	if e.TopScore() != 0 || len(e.HighScores()) != 0 {
		t.Error("an empty table should clear the cache")
	}
}

func TestHighScoreCacheLimit(t *testing.T) {
	e := NewEngine(EngineConfig{Seed: 1, HighScoreLimit: 3})
	for i := 0; i < 5; i++ {
		e.score = i * 10
		e.RecordHighScore()
	}
	hs := e.HighScores()
	if len(hs) != 3 || hs[0].Score != 40 || hs[2].Score != 20 {
		t.Errorf("HighScores = %+v", hs)
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, 5)
	e.board[19][0] = 3

	s := e.Snapshot(9)
	if s.Sequence != 9 || s.X != SpawnX || s.Y != 5 || s.Level != 1 {
		t.Errorf("snapshot = %+v", s)
	}

	e.board[19][1] = 5
	if !s.Board[19][1].Empty() {
		t.Error("snapshot aliases the engine board")
	}

	c := s.Composite()
	if c[5][SpawnX+1] != ShapeO.Color() || c[6][SpawnX+2] != ShapeO.Color() {
		t.Error("composite is missing the active piece")
	}
	if c[19][0] != 3 {
		t.Error("composite is missing settled blocks")
	}
	if !s.Board[5][SpawnX+1].Empty() {
		t.Error("Composite modified the snapshot board")
	}
}

func TestSnapshotCompositeAboveBoard(t *testing.T) {
	e := newTestEngine()
	place(e, MatrixFor(ShapeO), SpawnX, -1)

	c := e.Snapshot(1).Composite()
	if c.Filled() != 2 {
		t.Errorf("Filled = %d, want the two visible cells", c.Filled())
	}
}
