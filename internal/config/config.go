// Package config provides centralized configuration management.
// Every tunable of the game loop, the score stores and the servers lives here.
//
// Values come from defaults and are overridden by environment variables.
// Binaries load a .env file first, so both sources behave the same.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds engine and loop settings.
type GameConfig struct {
	TickInterval     time.Duration // Wall-clock time between Tick calls
	TickDelta        float64       // Seconds added to the fall accumulator per Tick
	FallInterval     float64       // Initial gravity interval in seconds
	Seed             int64         // RNG seed, 0 = time based
	PlayerName       string        // Default player name
	AutoRestartDelay time.Duration // Hosted games restart this long after game over
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		TickInterval:     30 * time.Millisecond,
		TickDelta:        0.03,
		FallInterval:     0.5,
		PlayerName:       "Player",
		AutoRestartDelay: 3 * time.Second,
	}
}

// GameFromEnv returns game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if ms := getEnvInt("TETRIS_TICK_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if d := getEnvFloat("TETRIS_TICK_DELTA", 0); d > 0 {
		cfg.TickDelta = d
	}
	if f := getEnvFloat("TETRIS_FALL_INTERVAL", 0); f > 0 {
		cfg.FallInterval = f
	}
	if s := getEnvInt64("TETRIS_SEED", 0); s != 0 {
		cfg.Seed = s
	}
	if name := strings.TrimSpace(os.Getenv("TETRIS_PLAYER")); name != "" {
		cfg.PlayerName = name
	}
	if ms := getEnvInt("TETRIS_AUTO_RESTART_MS", -1); ms >= 0 {
		cfg.AutoRestartDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

// =============================================================================
// HIGH SCORE CONFIGURATION
// =============================================================================

// ScoresConfig holds high-score store settings.
type ScoresConfig struct {
	APIURL   string        // Remote score API, empty = offline
	APIKey   string        // Optional X-Api-Key header value
	Timeout  time.Duration // Per-request timeout for the remote API
	FilePath string        // Local JSON fallback file
	DBPath   string        // SQLite database used by the score server
	Limit    int           // Entries kept in the table
}

// DefaultScores returns the default high-score configuration.
func DefaultScores() ScoresConfig {
	return ScoresConfig{
		Timeout:  4 * time.Second,
		FilePath: "highscores.json",
		DBPath:   "scores.db",
		Limit:    10,
	}
}

// ScoresFromEnv returns high-score configuration with environment variable overrides.
func ScoresFromEnv() ScoresConfig {
	cfg := DefaultScores()

	if u := strings.TrimSpace(os.Getenv("TETRIS_SCORE_API_URL")); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
	if k := os.Getenv("TETRIS_SCORE_API_KEY"); k != "" {
		cfg.APIKey = k
	}
	if ms := getEnvInt("TETRIS_SCORE_TIMEOUT_MS", 0); ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if p := os.Getenv("TETRIS_SCORES_FILE"); p != "" {
		cfg.FilePath = p
	}
	if p := os.Getenv("TETRIS_SCORES_DB"); p != "" {
		cfg.DBPath = p
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                int
	RateLimitPerSecond  float64 // Per-IP request rate
	RateLimitBurst      int
	AllowedOrigins      []string
	DisableDebugServer  bool
	AllowDebugExternal  bool
	DebugPort           int
	CommandsPerSecond   float64 // Per-client WebSocket command rate
	CommandBurst        int
	ShutdownGracePeriod time.Duration
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:                3000,
		RateLimitPerSecond:  10,
		RateLimitBurst:      20,
		AllowedOrigins:      []string{"*"},
		DebugPort:           6060,
		CommandsPerSecond:   20,
		CommandBurst:        10,
		ShutdownGracePeriod: 5 * time.Second,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", 0); p > 0 {
		cfg.DebugPort = p
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	cfg.DisableDebugServer = os.Getenv("DISABLE_DEBUG_SERVER") == "true"
	cfg.AllowDebugExternal = os.Getenv("ALLOW_DEBUG_EXTERNAL") == "true"

	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig holds event log settings.
type EventLogConfig struct {
	Path string // JSONL output file, empty = memory only
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return EventLogConfig{}
}

// EventLogFromEnv returns event log configuration with environment variable overrides.
func EventLogFromEnv() EventLogConfig {
	cfg := DefaultEventLog()
	if p := os.Getenv("EVENT_LOG_PATH"); p != "" {
		cfg.Path = p
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game     GameConfig
	Scores   ScoresConfig
	Server   ServerConfig
	EventLog EventLogConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:     GameFromEnv(),
		Scores:   ScoresFromEnv(),
		Server:   ServerFromEnv(),
		EventLog: EventLogFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
