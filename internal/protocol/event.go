package protocol

import (
	"encoding/json"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// EventType tags an outbound frame
type EventType string

const (
	EventLobbyState  EventType = "lobby_state"
	EventGameState   EventType = "game_state"
	EventMoveApplied EventType = "move_applied"
	EventChat        EventType = "chat"
	EventSignal      EventType = "signal"
	EventError       EventType = "error"
)

// SeatState describes one seat in lobby and game events
type SeatState struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// LobbyStateEvent is the authoritative lobby view, broadcast to every
// observer with no sender exclusion
type LobbyStateEvent struct {
	Type   EventType        `json:"type"`
	Status model.RoomStatus `json:"status"`
	White  *SeatState       `json:"white"`
	Black  *SeatState       `json:"black"`
}

// GameStateEvent is the authoritative game view. Broadcast on terminal
// transitions; also sent directly on connect with PlayerColor populated.
type GameStateEvent struct {
	Type     EventType        `json:"type"`
	Status   model.RoomStatus `json:"status"`
	Position string           `json:"position"`
	Moves    []model.Move     `json:"moves"`
	White    *SeatState       `json:"white"`
	Black    *SeatState       `json:"black"`
	Winner   model.Color      `json:"winner,omitempty"`

	// PlayerColor is set only on the direct connect snapshot
	PlayerColor model.Color `json:"player_color,omitempty"`
}

// MoveAppliedEvent confirms an applied move to opponents and observers;
// the originator is excluded and applies the move optimistically
type MoveAppliedEvent struct {
	Type     EventType        `json:"type"`
	Move     model.Move       `json:"move"`
	Position string           `json:"position"`
	Moves    []model.Move     `json:"moves"`
	Status   model.RoomStatus `json:"status"`
	Winner   model.Color      `json:"winner,omitempty"`
	By       string           `json:"by"`
}

// ChatEvent relays a chat message, excluding the sender
type ChatEvent struct {
	Type    EventType `json:"type"`
	Sender  string    `json:"sender"`
	Message string    `json:"message"`
}

// SignalEvent relays an opaque signaling payload, excluding the sender
type SignalEvent struct {
	Type    EventType       `json:"type"`
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorEvent reports a request failure to the requesting connection only
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Event error codes
const (
	CodeNotYourTurn  = "NOT_YOUR_TURN"
	CodeInvalidState = "INVALID_STATE"
	CodeIllegalMove  = "ILLEGAL_MOVE"
	CodeNotASeat     = "NOT_A_SEAT_HOLDER"
	CodeRoomNotFound = "ROOM_NOT_FOUND"
	CodeTransient    = "TRANSIENT_FAILURE"
)

// NewLobbyState builds the lobby view of a room
func NewLobbyState(room *model.Room) *LobbyStateEvent {
	return &LobbyStateEvent{
		Type:   EventLobbyState,
		Status: room.Status,
		White:  seatState(room.White),
		Black:  seatState(room.Black),
	}
}

// NewGameState builds the game view of a room
func NewGameState(room *model.Room) *GameStateEvent {
	return &GameStateEvent{
		Type:     EventGameState,
		Status:   room.Status,
		Position: room.Position,
		Moves:    room.Moves,
		White:    seatState(room.White),
		Black:    seatState(room.Black),
		Winner:   room.Winner,
	}
}

// NewSnapshot builds the connect-time game view from one seat's perspective
func NewSnapshot(room *model.Room, color model.Color) *GameStateEvent {
	ev := NewGameState(room)
	ev.PlayerColor = color
	return ev
}

// NewMoveApplied builds the confirmation event for an applied move
func NewMoveApplied(room *model.Room, move model.Move, byName string) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		Type:     EventMoveApplied,
		Move:     move,
		Position: room.Position,
		Moves:    room.Moves,
		Status:   room.Status,
		Winner:   room.Winner,
		By:       byName,
	}
}

func seatState(seat *model.Seat) *SeatState {
	if seat == nil {
		return nil
	}
	return &SeatState{
		Name:  seat.Identity.DisplayName,
		Ready: seat.Ready,
	}
}
