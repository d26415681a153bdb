package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"tetris/internal/command"
	"tetris/internal/game"
	"tetris/internal/highscore"
	"tetris/internal/render"
)

const (
	DefaultScoreLimit = 10
	MaxScoreLimit     = 100
	maxBodyBytes      = 4 << 10
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *routerHandlers) handleGetScores(w http.ResponseWriter, r *http.Request) {
	limit := DefaultScoreLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, MaxScoreLimit)
	}

	entries, err := h.scores.Top(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Score query failed: %v", err)
		writeError(w, "failed to load scores", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []highscore.Entry{}
	}
	writeJSON(w, entries)
}

func (h *routerHandlers) handlePostScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	entry, err := h.scores.Add(r.Context(), highscore.Entry{Name: req.Name, Score: req.Score})
	if errors.Is(err, highscore.ErrInvalidEntry) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("❌ Score insert failed: %v", err)
		writeError(w, "failed to store score", http.StatusInternalServerError)
		return
	}

	log.Printf("🏆 Score recorded: %s %d", entry.Name, entry.Score)
	writeJSONStatus(w, http.StatusCreated, entry)
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.game.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"rateLimiter": h.limiter.GetStats(),
	}
	if h.game != nil {
		stats["game"] = h.game.Stats()
	}
	if h.eventLog != nil {
		stats["eventLog"] = h.eventLog.GetStats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.RenderPNG(w, h.game.Snapshot(), h.render); err != nil {
		log.Printf("⚠️ Board render failed: %v", err)
	}
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	cmd, err := command.Parse(req.Command)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.submit(w, cmd)
}

func (h *routerHandlers) handleReset(w http.ResponseWriter, r *http.Request) {
	h.submit(w, game.Command{Type: game.CommandReset})
}

func (h *routerHandlers) handleSetPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}

	h.submit(w, game.Command{Type: game.CommandSetName, Name: req.Name})
}

// submit queues cmd and answers 202, or 503 when the game cannot take it
func (h *routerHandlers) submit(w http.ResponseWriter, cmd game.Command) {
	if !h.game.Submit(cmd) {
		writeError(w, "game is busy", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"command":  cmd.Type.String(),
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSONStatus(w, code, map[string]string{"error": message})
}
