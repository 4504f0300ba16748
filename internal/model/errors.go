package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is already full")
	ErrNotASeatHolder = errors.New("identity holds neither seat")

	// Game errors
	ErrInvalidState = errors.New("action not valid in current room status")
	ErrNotYourTurn  = errors.New("not this player's turn")
	ErrIllegalMove  = errors.New("illegal move for current position")

	// Storage errors
	ErrConflict = errors.New("concurrent modification detected")
)
