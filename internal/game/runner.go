package game

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tetris/internal/highscore"
	"tetris/internal/metrics"
)

// RunnerConfig holds the cadence and queue settings of a Runner.
type RunnerConfig struct {
	TickInterval     time.Duration // Wall-clock time between Tick calls
	TickDelta        float64       // Seconds fed to each Tick call
	StoreTimeout     time.Duration // Deadline for each store call
	CommandBuffer    int           // Queued commands before Submit drops
	AutoRestartDelay time.Duration // Reset this long after game over; 0 waits for a reset command
}

// DefaultRunnerConfig ticks every 30ms with a 0.03s step.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		TickInterval:  30 * time.Millisecond,
		TickDelta:     DefaultTickDelta,
		StoreTimeout:  4 * time.Second,
		CommandBuffer: 64,
	}
}

// Runner owns an Engine and drives it from a single goroutine. Commands and
// completed store calls are queued onto that goroutine, so the engine is
// never touched concurrently. Readers use Snapshot.
type Runner struct {
	engine *Engine
	store  highscore.Store
	cfg    RunnerConfig

	commands chan Command
	results  chan func(*Engine)

	snapshot atomic.Pointer[Snapshot]
	sequence uint64

	listenerMu sync.RWMutex
	listeners  []Listener

	// Set by the engine listener, consumed after each loop step
	gameOverPending bool

	ctx      context.Context
	cancel   context.CancelFunc
	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	inflight sync.WaitGroup

	// Stats
	tickCount    atomic.Uint64
	appliedCount atomic.Uint64
	droppedCount atomic.Uint64
}

// NewRunner wraps engine. store may be nil for an offline game.
func NewRunner(engine *Engine, store highscore.Store, cfg RunnerConfig) *Runner {
	def := DefaultRunnerConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.TickDelta <= 0 {
		cfg.TickDelta = def.TickDelta
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = def.CommandBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		engine:   engine,
		store:    store,
		cfg:      cfg,
		commands: make(chan Command, cfg.CommandBuffer),
		results:  make(chan func(*Engine), 16),
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
	}
	engine.Subscribe(ListenerFunc(r.onEngineEvent))
	r.publish()
	return r
}

// Start begins the game loop and loads the high-score table.
func (r *Runner) Start() {
	if r.running.Swap(true) {
		return
	}

	r.wg.Add(1)
	go r.loop()
	r.FetchHighScores()

	log.Printf("🎮 Game runner started (tick %v, delta %.3fs)", r.cfg.TickInterval, r.cfg.TickDelta)
}

// Stop ends the loop, cancels in-flight store calls and waits for them.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		wasRunning := r.running.Swap(false)
		r.cancel()
		close(r.stopChan)
		r.wg.Wait()
		r.inflight.Wait()
		if wasRunning {
			log.Println("🛑 Game runner stopped")
		}
	})
}

// Subscribe adds a listener for engine events. Listeners run on the loop
// goroutine and must not block.
func (r *Runner) Subscribe(l Listener) {
	r.listenerMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenerMu.Unlock()
}

// Submit queues a command without blocking. It returns false when the
// runner is stopped or the queue is full.
func (r *Runner) Submit(cmd Command) bool {
	if !r.running.Load() {
		return false
	}
	select {
	case r.commands <- cmd:
		return true
	default:
		r.droppedCount.Add(1)
		metrics.RecordCommand(cmd.Type.String(), "dropped")
		return false
	}
}

// Snapshot returns the latest published state. Never nil.
func (r *Runner) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// FetchHighScores loads the remote table in the background; the result is
// applied on the loop goroutine when it arrives.
func (r *Runner) FetchHighScores() {
	if r.store == nil {
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.fetch()
	}()
}

// Stats returns loop counters for monitoring.
func (r *Runner) Stats() map[string]interface{} {
	snap := r.Snapshot()
	return map[string]interface{}{
		"running":  r.running.Load(),
		"ticks":    r.tickCount.Load(),
		"applied":  r.appliedCount.Load(),
		"dropped":  r.droppedCount.Load(),
		"sequence": snap.Sequence,
		"score":    snap.Score,
		"level":    snap.Level,
		"gameOver": snap.GameOver,
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	var restart *time.Timer
	var restartC <-chan time.Time

	for {
		select {
		case <-r.stopChan:
			if restart != nil {
				restart.Stop()
			}
			return

		case <-ticker.C:
			start := time.Now()
			stepped := r.engine.Tick(r.cfg.TickDelta)
			r.tickCount.Add(1)
			metrics.RecordTick(time.Since(start), stepped)
			if stepped {
				r.publish()
			}

		case cmd := <-r.commands:
			r.apply(cmd)
			// A manual reset makes a pending restart stale
			if cmd.Type == CommandReset && restart != nil {
				restart.Stop()
				restartC = nil
			}

		case fn := <-r.results:
			fn(r.engine)
			r.publish()

		case <-restartC:
			restartC = nil
			if r.engine.GameOver() {
				r.engine.Reset()
				r.publish()
			}
		}

		if r.gameOverPending {
			r.gameOverPending = false
			r.handleGameOver()
			if r.cfg.AutoRestartDelay > 0 {
				restart = time.NewTimer(r.cfg.AutoRestartDelay)
				restartC = restart.C
			}
		}
	}
}

func (r *Runner) apply(cmd Command) {
	name := cmd.Type.String()
	if r.engine.Apply(cmd) {
		r.appliedCount.Add(1)
		metrics.RecordCommand(name, "applied")
		r.publish()
		return
	}
	metrics.RecordCommand(name, "blocked")
}

func (r *Runner) publish() {
	r.sequence++
	r.snapshot.Store(r.engine.Snapshot(r.sequence))
}

// onEngineEvent runs synchronously inside engine calls on the loop goroutine.
func (r *Runner) onEngineEvent(ev Event) {
	switch ev.Type {
	case EventTypePieceLocked:
		metrics.RecordLock(ev.Cleared)
	case EventTypeLevelChanged:
		metrics.SetLevel(ev.Level)
	case EventTypeGameOver:
		if ev.GameOver {
			r.gameOverPending = true
		}
	}

	r.listenerMu.RLock()
	for _, l := range r.listeners {
		l.OnEvent(ev)
	}
	r.listenerMu.RUnlock()
}

// handleGameOver records the score locally right away, then submits it and
// reloads the table in the background, even when the submit fails.
func (r *Runner) handleGameOver() {
	metrics.RecordGameOver()
	entry := r.engine.RecordHighScore()
	r.publish()
	log.Printf("💀 Game over: %s scored %d (%d lines)", entry.Name, entry.Score, r.engine.Lines())

	if r.store == nil {
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		ctx, cancel := context.WithTimeout(r.ctx, r.cfg.StoreTimeout)
		err := r.store.Submit(ctx, entry)
		cancel()
		metrics.RecordStoreCall("submit", err)
		if err != nil {
			log.Printf("⚠️ High score submit failed: %v", err)
		}
		r.fetch()
	}()
}

func (r *Runner) fetch() {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.StoreTimeout)
	entries, err := r.store.FetchTop(ctx)
	cancel()
	metrics.RecordStoreCall("fetch", err)
	if err != nil {
		log.Printf("⚠️ High score fetch failed: %v", err)
		return
	}
	r.post(func(e *Engine) {
		e.ApplyHighScores(entries)
	})
}

// post hands fn to the loop goroutine, giving up if the runner stops first.
func (r *Runner) post(fn func(*Engine)) {
	select {
	case r.results <- fn:
	case <-r.stopChan:
	}
}
