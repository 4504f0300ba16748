package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Identity represents a game participant. Guest identities are ephemeral and
// live only as long as their room; registered identities are stable across rooms.
type Identity struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool
	CreatedAt   time.Time
}

// RegisteredPlayer extends Identity with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
