package model

import "time"

// RoomID is the external-facing code used to join a room
type RoomID string

// RoomStatus represents the current phase of a room's game
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Lobby phase, accepting the second seat and ready-ups
	RoomStatusPlaying  RoomStatus = "playing"  // Game in progress
	RoomStatusFinished RoomStatus = "finished" // Terminal; no further mutation
)

// Color identifies one of the two seats
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Opponent returns the other color
func (c Color) Opponent() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// StartingPosition is the standard chess starting position in FEN
const StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Seat binds an identity to one side of the board. Readiness travels with the
// seat so that swapping colors during the lobby phase keeps it consistent.
type Seat struct {
	Identity Identity
	Ready    bool
}

// Move is one applied move in a room's game
type Move struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Promotion string    `json:"promotion,omitempty"`
	SAN       string    `json:"san"`
	By        PlayerID  `json:"by"`
	PlayedAt  time.Time `json:"played_at"`
}

// Room is the single source of truth for one game session
type Room struct {
	ID     RoomID
	Status RoomStatus

	// Seats; nil while unbound. Once bound a seat is never rebound to a
	// different identity (rejoin by the same identity is a no-op).
	White *Seat
	Black *Seat

	// Position is the authoritative board state (FEN), always the result of
	// replaying Moves from StartingPosition.
	Position string

	// Moves is append-only; insertion order is play order
	Moves []Move

	// Winner is set when the game finishes with a decisive result, including
	// forfeit by abandonment. Empty for draws and unfinished games.
	Winner Color `json:",omitempty"`

	// Version is the optimistic concurrency stamp, incremented on every save
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeatOf returns the seat bound to the given identity and its color,
// or nil if the identity holds neither seat
func (r *Room) SeatOf(id PlayerID) (*Seat, Color) {
	if r.White != nil && r.White.Identity.ID == id {
		return r.White, ColorWhite
	}
	if r.Black != nil && r.Black.Identity.ID == id {
		return r.Black, ColorBlack
	}
	return nil, ""
}

// Seat returns the seat for a color, or nil if unbound
func (r *Room) Seat(color Color) *Seat {
	if color == ColorWhite {
		return r.White
	}
	return r.Black
}

// IsFull returns true when both seats are bound
func (r *Room) IsFull() bool {
	return r.White != nil && r.Black != nil
}

// BothReady returns true when both seats are bound and ready
func (r *Room) BothReady() bool {
	return r.IsFull() && r.White.Ready && r.Black.Ready
}
