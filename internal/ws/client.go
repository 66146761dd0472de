package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout       = 10 * time.Second
	readLimit          = 4096
	clientSendBuffer   = 64
	maxConnLifetime    = 4 * time.Hour
	keyRecheckInterval = 15 * time.Minute
	keyRecheckTimeout  = 5 * time.Second
	pingInterval       = 30 * time.Second
	pingTimeout        = 10 * time.Second
	maxMissedPongs     = 2
)

// KeyValidator re-checks the API key a client connected with.
type KeyValidator interface {
	ClientByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// Client is one WebSocket subscriber watching a single model.
type Client struct {
	ModelID string

	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Entry
	apiKey      string
	validator   KeyValidator
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewClient creates a Client subscribed to modelID. validator may be nil
// when authentication is disabled.
func NewClient(hub *Hub, conn *websocket.Conn, modelID string, validator KeyValidator, apiKey string) *Client {
	return &Client{
		ModelID:     modelID,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log.WithField("model_id", modelID),
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ReadPump consumes client frames until the connection closes. Only
// subscribe messages are understood; anything else is ignored.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // teardown
	}()

	c.conn.SetReadLimit(readLimit)

	for {
		_, frame, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("ws client closed")
			}

			return
		}

		c.handleMessage(frame)
	}
}

func (c *Client) handleMessage(frame []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(frame, &msg); err != nil || msg.Type != "subscribe" {
		return
	}

	if c.hub.ReplayEvents(c, msg.LastEventID) {
		return
	}

	reset, err := json.Marshal(ResetMsg{Type: "reset", Reason: "events no longer buffered, reload the model"})
	if err != nil {
		return
	}

	select {
	case c.send <- reset:
	default:
	}
}

// WritePump writes queued frames, pings the peer and closes the connection
// when the key stops validating or the lifetime cap is hit.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // teardown

	lifetime := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetime.Stop()

	recheck := time.NewTicker(keyRecheckInterval)
	defer recheck.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	missed := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if c.ping(ctx) {
				missed = 0
			} else if missed++; missed >= maxMissedPongs {
				c.log.Debug("ws client missed pongs, closing")

				return
			}
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // teardown

				return
			}

			if err := c.write(ctx, msg); err != nil {
				c.log.WithError(err).Debug("ws write failed")

				return
			}
		case <-recheck.C:
			if !c.keyStillValid(ctx) {
				c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // teardown

				return
			}
		case <-lifetime.C:
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // teardown

			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return c.conn.Write(ctx, websocket.MessageText, msg)
}

func (c *Client) ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return c.conn.Ping(ctx) == nil
}

func (c *Client) keyStillValid(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, keyRecheckTimeout)
	defer cancel()

	if _, err := c.validator.ClientByAPIKey(ctx, c.apiKey); err != nil {
		c.log.Info("ws api key no longer valid, closing")

		return false
	}

	return true
}
