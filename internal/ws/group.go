package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// broadcastMsg is one outbound frame with an optional excluded channel
type broadcastMsg struct {
	message []byte
	exclude model.ChannelID
}

// Group manages the websocket connections observing a single room.
// Membership changes are synchronous mutex-guarded map operations, so a
// caller that has seen Unregister return can trust ClientCount; only
// frame fan-out runs through the Run loop, which serializes delivery
// order across publishers.
type Group struct {
	roomID  model.RoomID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	broadcast chan broadcastMsg
	done      chan struct{}
}

// NewGroup creates a new Group for a room
func NewGroup(roomID model.RoomID, logger *slog.Logger) *Group {
	return &Group{
		roomID:    roomID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("room", string(roomID))),
		broadcast: make(chan broadcastMsg, 256),
		done:      make(chan struct{}),
	}
}

// Run starts the group's delivery loop
func (g *Group) Run() {
	g.logger.Info("broadcast group started")
	for {
		select {
		case msg := <-g.broadcast:
			g.mu.RLock()
			sentCount := 0
			droppedCount := 0
			for client := range g.clients {
				if msg.exclude != "" && client.channelID == msg.exclude {
					continue
				}
				select {
				case client.send <- msg.message:
					sentCount++
				default:
					droppedCount++
					g.logger.Warn("frame dropped - client buffer full",
						slog.String("player_id", string(client.playerID)))
				}
			}
			g.mu.RUnlock()
			if droppedCount > 0 {
				g.logger.Warn("broadcast partial failure",
					slog.Int("sent", sentCount),
					slog.Int("dropped", droppedCount))
			}

		case <-g.done:
			g.mu.Lock()
			clientCount := len(g.clients)
			for client := range g.clients {
				close(client.send)
				delete(g.clients, client)
			}
			g.mu.Unlock()
			g.logger.Info("broadcast group stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the group; the client is a delivery target
// as soon as this returns
func (g *Group) Register(client *Client) {
	g.mu.Lock()
	g.clients[client] = true
	clientCount := len(g.clients)
	g.mu.Unlock()
	g.logger.Info("client joined group",
		slog.String("player_id", string(client.playerID)),
		slog.String("channel_id", string(client.channelID)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client and closes its send channel. Removing a
// client that already left is a no-op. The removal is complete when
// this returns.
func (g *Group) Unregister(client *Client) {
	g.mu.Lock()
	if _, ok := g.clients[client]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, client)
	close(client.send)
	clientCount := len(g.clients)
	g.mu.Unlock()
	g.logger.Info("client left group",
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Broadcast sends a frame to every client except the excluded channel
// (empty means no exclusion)
func (g *Group) Broadcast(message []byte, exclude model.ChannelID) {
	select {
	case g.broadcast <- broadcastMsg{message: message, exclude: exclude}:
	default:
		g.logger.Warn("broadcast dropped - group buffer full")
	}
}

// Close shuts down the group
func (g *Group) Close() {
	close(g.done)
}

// ClientCount returns the number of connected clients
func (g *Group) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}
