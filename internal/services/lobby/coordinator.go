package lobby

import (
	"context"
	"errors"

	"github.com/kingsgambit/kingsgambit-go/internal/dependencies/clock"
	"github.com/kingsgambit/kingsgambit-go/internal/dependencies/random"
	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/protocol"
	"github.com/kingsgambit/kingsgambit-go/internal/storage"
)

// saveRetries bounds optimistic-save retries before the request is
// surfaced as a transient conflict
const saveRetries = 3

// Publisher delivers an event to every connection observing a room,
// minus the excluded channel (empty means deliver to all)
type Publisher interface {
	Publish(roomID model.RoomID, event any, exclude model.ChannelID)
}

// Coordinator runs the ready-up phase of a room: seat holders mark
// themselves ready, and once both seats agree the game begins with a
// coin-flipped color assignment.
type Coordinator struct {
	storage   storage.Storage
	publisher Publisher
	clock     clock.Clock
	random    random.Random
}

// NewCoordinator creates a new lobby Coordinator
func NewCoordinator(
	storage storage.Storage,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
) *Coordinator {
	return &Coordinator{
		storage:   storage,
		publisher: publisher,
		clock:     clock,
		random:    random,
	}
}

// MarkReady records a seat holder's readiness. Marking ready twice is a
// no-op. The invocation that completes both ready flags also flips a
// coin over the seat assignment and moves the room to playing, so the
// creator's provisional white seat carries no advantage. A ready request
// against a room already past the lobby re-broadcasts the current state
// rather than failing, since a slow client may still be catching up.
func (c *Coordinator) MarkReady(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Room, error) {
	for attempt := 0; attempt < saveRetries; attempt++ {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}

		seat, _ := room.SeatOf(playerID)
		if seat == nil {
			return nil, model.ErrNotASeatHolder
		}

		if room.Status != model.RoomStatusWaiting {
			c.publisher.Publish(roomID, protocol.NewLobbyState(room), "")
			return room, nil
		}

		if seat.Ready {
			c.publisher.Publish(roomID, protocol.NewLobbyState(room), "")
			return room, nil
		}
		seat.Ready = true

		if room.BothReady() {
			if c.random.Bool() {
				room.White, room.Black = room.Black, room.White
			}
			room.Status = model.RoomStatusPlaying
		}
		room.UpdatedAt = c.clock.Now()

		err = c.storage.SaveRoom(ctx, room)
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.publisher.Publish(roomID, protocol.NewLobbyState(room), "")
		return room, nil
	}
	return nil, model.ErrConflict
}
