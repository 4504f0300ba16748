package response

import (
	"time"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/services/auth"
)

// Identity represents a player identity in API responses
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// IdentityFromModel converts a model.Identity to a response Identity
func IdentityFromModel(i *model.Identity) Identity {
	return Identity{
		ID:          string(i.ID),
		DisplayName: i.DisplayName,
		IsGuest:     i.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Identity     Identity `json:"identity"`
	SessionToken string   `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Identity:     IdentityFromModel(&s.Identity),
		SessionToken: s.Token,
	}
}

// Seat represents one side of the board
type Seat struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
}

// SeatFromModel converts a model.Seat, returning nil for an unbound seat
func SeatFromModel(s *model.Seat) *Seat {
	if s == nil {
		return nil
	}
	return &Seat{
		PlayerID:    string(s.Identity.ID),
		DisplayName: s.Identity.DisplayName,
		Ready:       s.Ready,
	}
}

// Room represents a room in API responses. PlayerColor is the requesting
// player's seat color and is only set on seat-scoped responses.
type Room struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	White       *Seat        `json:"white"`
	Black       *Seat        `json:"black"`
	Position    string       `json:"position"`
	Moves       []model.Move `json:"moves"`
	Winner      string       `json:"winner,omitempty"`
	PlayerColor string       `json:"player_color,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RoomFromModel converts a model.Room scoped to the given seat color
// (empty for unscoped responses)
func RoomFromModel(r *model.Room, playerColor model.Color) Room {
	moves := r.Moves
	if moves == nil {
		moves = []model.Move{}
	}
	return Room{
		ID:          string(r.ID),
		Status:      string(r.Status),
		White:       SeatFromModel(r.White),
		Black:       SeatFromModel(r.Black),
		Position:    r.Position,
		Moves:       moves,
		Winner:      string(r.Winner),
		PlayerColor: string(playerColor),
		CreatedAt:   r.CreatedAt,
	}
}
