package room

import (
	"context"
	"errors"

	"github.com/kingsgambit/kingsgambit-go/internal/dependencies/clock"
	"github.com/kingsgambit/kingsgambit-go/internal/dependencies/random"
	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/storage"
)

const (
	// RoomIDLength is the length of generated room identifiers
	RoomIDLength = 8
	// RoomIDAlphabet is the characters used in room identifiers (avoid confusing chars)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// saveRetries bounds optimistic-save retries before giving up
	saveRetries = 3
)

// Service manages room creation, joining, and read access
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
}

// NewService creates a new room Service
func NewService(storage storage.Storage, clock clock.Clock, random random.Random) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
	}
}

// Create creates a new room with the creator seated as white.
// Seat colors are provisional until the ready-up swap when the game starts.
func (s *Service) Create(ctx context.Context, creator model.Identity) (*model.Room, error) {
	now := s.clock.Now()

	// Generate unique room ID
	var id model.RoomID
	for {
		id = model.RoomID(s.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := s.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		ID:        id,
		Status:    model.RoomStatusWaiting,
		White:     &model.Seat{Identity: creator},
		Position:  model.StartingPosition,
		Moves:     []model.Move{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

// Get retrieves a room by ID
func (s *Service) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return s.storage.GetRoom(ctx, id)
}

// Join seats the player as black. Joining a room the player is already
// seated in is a no-op success, so reconnecting clients can re-issue the
// join without an error. A room with both seats taken rejects strangers.
func (s *Service) Join(ctx context.Context, id model.RoomID, player model.Identity) (*model.Room, error) {
	for attempt := 0; attempt < saveRetries; attempt++ {
		room, err := s.storage.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}

		// Rejoin by an already-seated player succeeds without changes
		if seat, _ := room.SeatOf(player.ID); seat != nil {
			return room, nil
		}

		if room.IsFull() {
			return nil, model.ErrRoomFull
		}

		room.Black = &model.Seat{Identity: player}
		room.UpdatedAt = s.clock.Now()

		err = s.storage.SaveRoom(ctx, room)
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return room, nil
	}
	return nil, model.ErrConflict
}

// Snapshot retrieves a room scoped to a seated player, returning the
// player's color alongside the room. Players without a seat are rejected.
func (s *Service) Snapshot(ctx context.Context, id model.RoomID, playerID model.PlayerID) (*model.Room, model.Color, error) {
	room, err := s.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, "", err
	}
	seat, color := room.SeatOf(playerID)
	if seat == nil {
		return nil, "", model.ErrNotASeatHolder
	}
	return room, color, nil
}
