package domain

import "time"

// EventType defines the category of a history event.
type EventType string

const (
	EventCommit EventType = "commit"
	EventUndo   EventType = "undo"
	EventRedo   EventType = "redo"
)

// HistoryEvent describes one change to a History.
type HistoryEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ModelName string    `json:"model_name"`
	UndoCount int       `json:"undo_count"`
	RedoCount int       `json:"redo_count"`
	// Failed counts command nodes whose geometry could not be applied.
	Failed int `json:"failed,omitempty"`
}

// HistoryHooks defines callbacks for history observability.
type HistoryHooks struct {
	OnCommit func(*HistoryEvent)
	OnUndo   func(*HistoryEvent)
	OnRedo   func(*HistoryEvent)
}
