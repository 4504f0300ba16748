package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kingsgambit/kingsgambit-go/internal/dependencies/clock"
	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/protocol"
	"github.com/kingsgambit/kingsgambit-go/internal/rules"
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

// Coordinator runs a room's playing phase: it validates and applies
// moves through the rules oracle, relays chat and signaling frames, and
// settles games abandoned by disconnection. The room record is the only
// authority; clients that disagree with it are wrong.
type Coordinator struct {
	storage   storage.Storage
	oracle    rules.Oracle
	publisher Publisher
	clock     clock.Clock
}

// NewCoordinator creates a new game Coordinator
func NewCoordinator(
	storage storage.Storage,
	oracle rules.Oracle,
	publisher Publisher,
	clock clock.Clock,
) *Coordinator {
	return &Coordinator{
		storage:   storage,
		oracle:    oracle,
		publisher: publisher,
		clock:     clock,
	}
}

// SubmitMove validates the candidate against the room's authoritative
// position and, if legal, appends it and advances the position. The
// confirmation broadcast excludes the originating channel: the mover
// already rendered the move optimistically and must not see it twice.
// Rejections are returned to the caller and never broadcast.
func (c *Coordinator) SubmitMove(
	ctx context.Context,
	roomID model.RoomID,
	playerID model.PlayerID,
	candidate rules.Candidate,
	origin model.ChannelID,
) (*model.Room, error) {
	for attempt := 0; attempt < saveRetries; attempt++ {
		room, err := c.storage.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if room.Status != model.RoomStatusPlaying {
			return nil, model.ErrInvalidState
		}

		// Turn order comes from the position itself, not from move parity
		mover := sideToMove(room.Position)
		seat := room.Seat(mover)
		if seat == nil || seat.Identity.ID != playerID {
			return nil, model.ErrNotYourTurn
		}

		result, err := c.oracle.ValidateAndApply(ctx, room.Position, candidate)
		if err != nil {
			return nil, err
		}

		move := model.Move{
			From:      candidate.From,
			To:        candidate.To,
			Promotion: candidate.Promotion,
			SAN:       result.SAN,
			By:        playerID,
			PlayedAt:  c.clock.Now(),
		}
		room.Moves = append(room.Moves, move)
		room.Position = result.Position
		if result.Terminal {
			room.Status = model.RoomStatusFinished
			room.Winner = result.Winner
		}
		room.UpdatedAt = c.clock.Now()

		err = c.storage.SaveRoom(ctx, room)
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		c.publisher.Publish(roomID, protocol.NewMoveApplied(room, move, seat.Identity.DisplayName), origin)
		return room, nil
	}
	return nil, model.ErrConflict
}

// HandleDisconnect settles a room whose seat holder dropped mid-game:
// the remaining player wins by forfeit. Disconnects outside the playing
// phase, or by someone without a seat, change nothing.
func (c *Coordinator) HandleDisconnect(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	for attempt := 0; attempt < saveRetries; attempt++ {
		room, err := c.storage.GetRoom(ctx, roomID)
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if room.Status != model.RoomStatusPlaying {
			return nil
		}
		seat, color := room.SeatOf(playerID)
		if seat == nil {
			return nil
		}

		room.Status = model.RoomStatusFinished
		room.Winner = color.Opponent()
		room.UpdatedAt = c.clock.Now()

		err = c.storage.SaveRoom(ctx, room)
		if errors.Is(err, model.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}

		c.publisher.Publish(roomID, protocol.NewGameState(room), "")
		return nil
	}
	return model.ErrConflict
}

// Chat relays a chat message to the rest of the room. Messages are not
// persisted and carry no game meaning.
func (c *Coordinator) Chat(ctx context.Context, roomID model.RoomID, senderID model.PlayerID, message string, origin model.ChannelID) error {
	sender, err := c.seatHolder(ctx, roomID, senderID)
	if err != nil {
		return err
	}

	c.publisher.Publish(roomID, &protocol.ChatEvent{
		Type:    protocol.EventChat,
		Sender:  sender.Identity.DisplayName,
		Message: message,
	}, origin)
	return nil
}

// Signal relays an opaque payload to the rest of the room, for
// client-to-client negotiation the server takes no position on
func (c *Coordinator) Signal(ctx context.Context, roomID model.RoomID, senderID model.PlayerID, payload json.RawMessage, origin model.ChannelID) error {
	sender, err := c.seatHolder(ctx, roomID, senderID)
	if err != nil {
		return err
	}

	c.publisher.Publish(roomID, &protocol.SignalEvent{
		Type:    protocol.EventSignal,
		Sender:  sender.Identity.DisplayName,
		Payload: payload,
	}, origin)
	return nil
}

func (c *Coordinator) seatHolder(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Seat, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	seat, _ := room.SeatOf(playerID)
	if seat == nil {
		return nil, model.ErrNotASeatHolder
	}
	return seat, nil
}

// sideToMove reads the active color from a FEN position
func sideToMove(position string) model.Color {
	fields := strings.Fields(position)
	if len(fields) >= 2 && fields[1] == "b" {
		return model.ColorBlack
	}
	return model.ColorWhite
}
