// Package metrics holds the process-wide Prometheus collectors.
// Labels are bounded: no player names or IPs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Game loop metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one runner tick",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
	})

	gravitySteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_gravity_steps_total",
		Help: "Gravity steps taken by the hosted game",
	})

	piecesLocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_pieces_locked_total",
		Help: "Pieces merged into the board",
	})

	linesCleared = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_lines_cleared_total",
		Help: "Line clears grouped by rows removed in one lock",
	}, []string{"rows"}) // Bounded: "1".."4"

	gameOvers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_over_total",
		Help: "Games that ended on a blocked spawn",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_commands_total",
		Help: "Player commands by outcome",
	}, []string{"command", "result"}) // result: "applied", "blocked", "dropped"

	scoreLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_level",
		Help: "Level of the hosted game",
	})

	// High-score store metrics
	storeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highscore_store_calls_total",
		Help: "High-score store calls by operation and result",
	}, []string{"op", "result"}) // op: "fetch", "submit"; result: "ok", "error"

	// HTTP metrics
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket broadcasts sent",
	})
)

// RecordTick records runner tick timing
func RecordTick(duration time.Duration, stepped bool) {
	tickDuration.Observe(duration.Seconds())
	if stepped {
		gravitySteps.Inc()
	}
}

// RecordLock records a merged piece and any rows it cleared
func RecordLock(cleared int) {
	piecesLocked.Inc()
	if cleared > 0 && cleared <= 4 {
		linesCleared.WithLabelValues(strconv.Itoa(cleared)).Inc()
	}
}

// RecordGameOver increments the game-over counter
func RecordGameOver() {
	gameOvers.Inc()
}

// SetLevel updates the level gauge
func SetLevel(level int) {
	scoreLevel.Set(float64(level))
}

// RecordCommand counts a player command; result is "applied", "blocked" or "dropped"
func RecordCommand(command, result string) {
	commandsTotal.WithLabelValues(command, result).Inc()
}

// RecordStoreCall counts a high-score store call
func RecordStoreCall(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeCalls.WithLabelValues(op, result).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
