package ws

import (
	"sort"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 256
	defaultBufferMaxAge = 30 * time.Minute
	bufferSweepInterval = 5 * time.Minute
)

// EventBuffer keeps the recent events of each model so a reconnecting
// client can catch up.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	maxAge time.Duration
	maxLen int
	stop   chan struct{}
	once   sync.Once
}

// NewEventBuffer creates an EventBuffer and starts its sweeper, which drops
// models whose newest event is older than maxAge.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		events: make(map[string][]Event),
		maxAge: maxAge,
		maxLen: maxLen,
		stop:   make(chan struct{}),
	}

	go eb.sweep()

	return eb
}

// Stop halts the sweeper. It is safe to call more than once.
func (eb *EventBuffer) Stop() {
	eb.once.Do(func() { close(eb.stop) })
}

func (eb *EventBuffer) sweep() {
	ticker := time.NewTicker(bufferSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case <-ticker.C:
			eb.dropStale(time.Now().Add(-eb.maxAge))
		}
	}
}

func (eb *EventBuffer) dropStale(cutoff time.Time) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for modelID, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, modelID)
		}
	}
}

// Append records evt under its model, trimming expired and excess entries.
func (eb *EventBuffer) Append(evt *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	buf := eb.events[evt.ModelID]

	cutoff := time.Now().Add(-eb.maxAge)
	for len(buf) > 0 && buf[0].Time.Before(cutoff) {
		buf = buf[1:]
	}

	buf = append(buf, *evt)
	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[evt.ModelID] = buf
}

// Since returns a copy of the buffered events of modelID with ID greater
// than lastEventID, oldest first.
func (eb *EventBuffer) Since(modelID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[modelID]
	i := sort.Search(len(buf), func(i int) bool { return buf[i].ID > lastEventID })

	if i == len(buf) {
		return nil
	}

	out := make([]Event, len(buf)-i)
	copy(out, buf[i:])

	return out
}

// OldestID returns the ID of the oldest buffered event of modelID, or 0.
func (eb *EventBuffer) OldestID(modelID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if buf := eb.events[modelID]; len(buf) > 0 {
		return buf[0].ID
	}

	return 0
}
