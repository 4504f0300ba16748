package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/services/game"
	"github.com/kingsgambit/kingsgambit-go/internal/services/lobby"
)

// GroupManager manages broadcast groups for all rooms and is the
// publisher the coordinators hand their events to
type GroupManager struct {
	groups map[model.RoomID]*Group
	mu     sync.RWMutex
	logger *slog.Logger
}

// The coordinators publish through the manager
var (
	_ lobby.Publisher = (*GroupManager)(nil)
	_ game.Publisher  = (*GroupManager)(nil)
)

// NewGroupManager creates a new GroupManager
func NewGroupManager(logger *slog.Logger) *GroupManager {
	return &GroupManager{
		groups: make(map[model.RoomID]*Group),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Register binds a client to its room's group, creating the group if
// none exists. Registration and empty-group removal both run under the
// manager lock, so a group is never torn down while a connection is
// joining it.
func (m *GroupManager) Register(roomID model.RoomID, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.groups[roomID]
	if !ok {
		group = NewGroup(roomID, m.logger)
		m.groups[roomID] = group
		go group.Run()
	}
	group.Register(client)
}

// Unregister removes a client from its room's group and tears the group
// down when it was the last member. Group membership is synchronous, so
// the emptiness check here is exact, and it shares the manager lock with
// Register.
func (m *GroupManager) Unregister(roomID model.RoomID, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.groups[roomID]
	if !ok {
		return
	}
	group.Unregister(client)
	if group.ClientCount() == 0 {
		group.Close()
		delete(m.groups, roomID)
		m.logger.Info("broadcast group removed", slog.String("room", string(roomID)))
	}
}

// GetGroup returns the group for a room, or nil if it doesn't exist
func (m *GroupManager) GetGroup(roomID model.RoomID) *Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups[roomID]
}

// Publish marshals an event and broadcasts it to a room's group, minus
// the excluded channel. Rooms with no live group have no observers, so
// the event is dropped.
func (m *GroupManager) Publish(roomID model.RoomID, event any, exclude model.ChannelID) {
	group := m.GetGroup(roomID)
	if group == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("event marshal failed",
			slog.String("room", string(roomID)),
			slog.String("error", err.Error()))
		return
	}
	group.Broadcast(data, exclude)
}
