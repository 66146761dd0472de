package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is a model change pushed to subscribers of one model.
type Event struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id"`
	ModelID string          `json:"model_id"`
	Data    json.RawMessage `json:"data,omitempty"`
	Time    time.Time       `json:"time"`
}

// SubscribeMsg is the optional first client message; it asks for replay of
// events newer than LastEventID.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client its replay window is gone and it should reload
// the model it is watching.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence hands out monotonic event IDs, one counter per model.
type EventSequence struct {
	mu   sync.Mutex
	next map[string]uint64
}

// NewEventSequence creates an empty EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{next: make(map[string]uint64)}
}

// Next returns the next ID for modelID, starting at 1.
func (es *EventSequence) Next(modelID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.next[modelID]++

	return es.next[modelID]
}
