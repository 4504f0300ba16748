package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping interval; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size; game frames are tiny
	maxMessageSize = 8 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection bound to a room's broadcast group
type Client struct {
	channelID   model.ChannelID
	playerID    model.PlayerID
	roomID      model.RoomID
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
	logger      *slog.Logger
}

// NewClient creates a client for an upgraded connection
func NewClient(roomID model.RoomID, conn *websocket.Conn, playerID model.PlayerID, logger *slog.Logger) *Client {
	channelID := model.ChannelID(uuid.NewString())
	return &Client{
		channelID:   channelID,
		playerID:    playerID,
		roomID:      roomID,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("player_id", string(playerID)),
			slog.String("channel_id", string(channelID))),
	}
}

// ChannelID returns the connection's channel identifier
func (c *Client) ChannelID() model.ChannelID {
	return c.channelID
}

// PlayerID returns the identity bound to the connection
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Enqueue marshals an event and queues it for this connection only.
// A full buffer drops the frame rather than blocking the caller.
func (c *Client) Enqueue(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("event marshal failed", slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("frame dropped - client buffer full")
	}
}

// readPump reads frames from the peer and hands them to the handler.
// It returns when the connection drops or the peer misses its pong
// deadline; the caller owns unregistration.
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		handle(c, data)
	}
}

// writePump writes queued frames and keepalive pings to the peer.
// It exits when the group closes the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
