package game

import (
	"encoding/json"
	"time"
)

// EventType enum for engine notifications
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeScoreChanged
	EventTypeLinesChanged
	EventTypeLevelChanged
	EventTypeGameOver // GameOver carries the new flag value, fired on both edges
	EventTypeReset
	EventTypeHighScoresChanged
	EventTypePieceLocked
)

// EventVersion for backwards compatibility in logged events
const EventVersion uint8 = 1

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeScoreChanged:
		return "score_changed"
	case EventTypeLinesChanged:
		return "lines_changed"
	case EventTypeLevelChanged:
		return "level_changed"
	case EventTypeGameOver:
		return "game_over"
	case EventTypeReset:
		return "reset"
	case EventTypeHighScoresChanged:
		return "high_scores_changed"
	case EventTypePieceLocked:
		return "piece_locked"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the type by name.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Event is a state-change notification. Counters always hold the values
// after the transition so listeners never need to query back.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Assigned by the event log
	Score     int       `json:"score"`
	Lines     int       `json:"lines"`
	Level     int       `json:"level"`
	GameOver  bool      `json:"gameOver"`
	Cleared   int       `json:"cleared,omitempty"` // Rows removed by a lock
}

// Listener receives engine notifications synchronously.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

// NewEvent creates an event with the current timestamp
func NewEvent(eventType EventType) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
	}
}
