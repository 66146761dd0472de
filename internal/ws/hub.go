// Package ws pushes model change events to WebSocket subscribers. Each
// client watches exactly one model id.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsfong/model-parser/internal/metrics"
)

const (
	broadcastBuffer = 256
	registerBuffer  = 64

	maxClients         = 1000
	maxClientsPerModel = 100

	// maxBroadcastPayload caps a single event frame.
	maxBroadcastPayload = 4096

	drainTimeout      = 3 * time.Second
	drainPollInterval = 50 * time.Millisecond
)

type modelBroadcast struct {
	modelID string
	msg     []byte
}

// Hub tracks subscribers and fans events out to the clients of a model.
// The client set is only touched from the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	perModel   map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan modelBroadcast
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Logger
	seq        *EventSequence
	buffer     *EventBuffer
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		perModel:   make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan modelBroadcast, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		seq:        NewEventSequence(),
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// Run is the hub event loop. It returns after Shutdown or ctx cancellation,
// once connected clients have been drained.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.buffer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.log.WithFields(logrus.Fields{"model_id": c.ModelID, "total": len(h.clients)}).Debug("ws client unregistered")
			}
		case b := <-h.broadcast:
			h.fanOut(b)
		}
	}
}

func (h *Hub) add(c *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global websocket limit reached, dropping client")
		c.closeSend()

		return
	}

	if h.perModel[c.ModelID] >= maxClientsPerModel {
		h.log.WithField("model_id", c.ModelID).Warn("per-model websocket limit reached, dropping client")
		c.closeSend()

		return
	}

	h.clients[c] = struct{}{}
	h.perModel[c.ModelID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{"model_id": c.ModelID, "total": len(h.clients)}).Debug("ws client registered")
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	c.closeSend()

	h.perModel[c.ModelID]--
	if h.perModel[c.ModelID] <= 0 {
		delete(h.perModel, c.ModelID)
	}

	h.updateCount()
}

// fanOut delivers a frame to every subscriber of the model. A client whose
// send buffer is full is disconnected.
func (h *Hub) fanOut(b modelBroadcast) {
	for c := range h.clients {
		if c.ModelID != b.modelID {
			continue
		}

		select {
		case c.send <- b.msg:
		default:
			h.log.WithField("model_id", c.ModelID).Debug("slow ws client dropped")
			h.remove(c)
		}
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// BroadcastToModel queues msg for the subscribers of modelID. Oversized
// payloads are dropped.
func (h *Hub) BroadcastToModel(modelID string, msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"model_id":     modelID,
			"payload_size": len(msg),
		}).Warn("dropping oversized ws payload")

		return
	}

	select {
	case h.broadcast <- modelBroadcast{modelID: modelID, msg: msg}:
	default:
		h.log.Warn("ws broadcast channel full, dropping event")
	}
}

// BroadcastEvent numbers an event, keeps it for replay and sends it to the
// subscribers of modelID.
func (h *Hub) BroadcastEvent(eventType, modelID string, data json.RawMessage) {
	evt := Event{
		Type:    eventType,
		ID:      h.seq.Next(modelID),
		ModelID: modelID,
		Data:    data,
		Time:    time.Now().UTC(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("marshaling ws event")

		return
	}

	h.buffer.Append(&evt)
	h.BroadcastToModel(modelID, msg)
}

// Register hands a client to the Run loop.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("ws register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client. It is a no-op once Run has exited.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown asks Run to drain clients and waits until it has.
func (h *Hub) Shutdown() {
	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}

	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining websocket clients")

	bye := []byte(`{"type":"shutdown","reason":"server shutting down"}`)
	for c := range h.clients {
		select {
		case c.send <- bye:
		default:
		}
	}

	deadline := time.NewTimer(drainTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

wait:
	for h.pending() {
		select {
		case <-deadline.C:
			h.log.Warn("websocket drain timed out")

			break wait
		case <-ticker.C:
		}
	}

	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}

	h.perModel = make(map[string]int)
	h.updateCount()
}

func (h *Hub) pending() bool {
	for c := range h.clients {
		if len(c.send) > 0 {
			return true
		}
	}

	return false
}

// ReplayEvents sends the client the buffered events after lastEventID. It
// returns false when lastEventID predates the buffer and the client must
// reload instead.
func (h *Hub) ReplayEvents(c *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(c.ModelID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest-1 {
		return false
	}

	for _, evt := range h.buffer.Since(c.ModelID, lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		select {
		case c.send <- msg:
		default:
			return true
		}
	}

	return true
}
