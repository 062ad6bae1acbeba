package network

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Time allowed for one engine call made on behalf of a client.
	actionTimeout = 5 * time.Second
)

// Client actions.
const (
	ActionFight      = "FIGHT"
	ActionCheckDaily = "CHECK_DAILY"
	ActionState      = "STATE"
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.tuning.ClientSendBuffer),
		limiter: newWindowLimiter(hub.tuning.MaxMessagesPerSecond, time.Second),
	}
}

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type string `json:"type"` // "FIGHT", "CHECK_DAILY", "STATE"
}

// Client object to hold connection status. Added Hub ref to allow unregister.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *windowLimiter
	closed  bool // send was closed; guarded by hub.mu
}

// Register adds the client to the hub.
func (c *Client) Register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnf("WebSocket read error: %v", err)
				if c.hub.metrics != nil {
					c.hub.metrics.RecordWSError()
				}
			}
			break
		}
		if c.hub.metrics != nil {
			c.hub.metrics.RecordWSMessage(true)
		}

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Warnf("Failed to parse PlayerAction from WebSocket: %v", err)
			c.reply(MsgTypeError, map[string]string{"error": "invalid message"})
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	// 1. Rate Limiting Check
	if !c.limiter.Allow(time.Now()) {
		c.hub.logger.Warn("Rate limit exceeded for client action " + action.Type)
		c.reply(MsgTypeError, map[string]string{"error": "rate limit exceeded"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	// 2. Route to the engine
	eng := c.hub.engine
	switch action.Type {
	case ActionFight:
		res, ok, err := eng.Fight(ctx)
		if err != nil {
			c.reply(MsgTypeError, map[string]string{"error": battleFailed(err)})
			return
		}
		c.reply(MsgTypeFightResult, fightView(eng, res, ok))
	case ActionCheckDaily:
		if err := eng.CheckDailyStatus(ctx); err != nil {
			c.reply(MsgTypeError, map[string]string{"error": "Daily check failed: " + err.Error()})
			return
		}
		c.reply(MsgTypeState, viewState(eng))
	case ActionState:
		c.reply(MsgTypeState, viewState(eng))
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		c.reply(MsgTypeError, map[string]string{"error": "unknown action " + action.Type})
	}
}

func (c *Client) reply(t MessageType, payload interface{}) {
	c.hub.sendTo(c, Message{Type: t, Timestamp: time.Now().Unix(), Payload: payload})
}

// battleFailed renders a fight error for the player with its detail.
func battleFailed(err error) string {
	return "Battle failed: " + err.Error()
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// windowLimiter allows at most limit calls per fixed window.
type windowLimiter struct {
	limit  int
	window time.Duration
	start  time.Time
	count  int
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{limit: limit, window: window}
}

// Allow is only called from the client's read goroutine.
func (l *windowLimiter) Allow(now time.Time) bool {
	if l.limit <= 0 {
		return true
	}
	if now.Sub(l.start) >= l.window {
		l.start = now
		l.count = 0
	}
	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}
