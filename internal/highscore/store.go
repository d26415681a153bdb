// Package highscore holds the high-score table and the stores that persist it.
package highscore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultPlayerName = "Player"
	MaxNameLength     = 10 // Runes kept from a player name
)

// ErrInvalidEntry is returned for entries a store refuses to persist.
var ErrInvalidEntry = errors.New("invalid high score entry")

// Entry is one row of the high-score table.
// JSON decoding matches field names case-insensitively, so {"Name","Score"}
// payloads from other clients decode as well.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Store is the remote or local home of the high-score table.
type Store interface {
	// FetchTop returns the stored table, best score first.
	FetchTop(ctx context.Context) ([]Entry, error)
	// Submit records a new entry.
	Submit(ctx context.Context, entry Entry) error
}

// NetworkError reports a failed call to a remote store.
type NetworkError struct {
	Op         string // "fetch" or "submit"
	StatusCode int    // HTTP status, 0 if the request never completed
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("highscore %s: unexpected status: %s", e.Op, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("highscore %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err came from a remote store call.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// NormalizeName trims whitespace, falls back to DefaultPlayerName when
// nothing is left and truncates to MaxNameLength runes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	return name
}

// Validate normalizes the entry name and rejects negative scores.
func (e Entry) Validate() (Entry, error) {
	if e.Score < 0 {
		return e, fmt.Errorf("%w: negative score %d", ErrInvalidEntry, e.Score)
	}
	e.Name = NormalizeName(e.Name)
	return e, nil
}
