package storage

import (
	"context"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// Room writes use optimistic concurrency: SaveRoom succeeds only when the
// stored version matches the version the caller loaded, and increments the
// version on success. Concurrent writers observe model.ErrConflict and are
// expected to reload and retry.
type Storage interface {
	// Identity operations
	SaveIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id model.PlayerID) (*model.Identity, error)
	DeleteIdentity(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Room operations
	// CreateRoom fails with model.ErrConflict if the room ID is taken.
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	// SaveRoom performs a compare-and-save against room.Version. On success the
	// stored and in-memory versions are both incremented.
	SaveRoom(ctx context.Context, room *model.Room) error
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
}
