package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newRoom(id string) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		ID:     model.RoomID(id),
		Status: model.RoomStatusWaiting,
		White: &model.Seat{
			Identity: model.Identity{ID: "p1", DisplayName: "Alice", IsGuest: true},
		},
		Position:  model.StartingPosition,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Identity tests

func (s *StorageSuite) TestSaveAndGetIdentity() {
	identity := &model.Identity{ID: "p1", DisplayName: "Alice", IsGuest: true}

	err := s.storage.SaveIdentity(s.ctx, identity)
	s.Require().NoError(err)

	got, err := s.storage.GetIdentity(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
}

func (s *StorageSuite) TestGetMissingIdentityFails() {
	_, err := s.storage.GetIdentity(s.ctx, "nope")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRegisteredPlayerUsernameIndex() {
	rp := &model.RegisteredPlayer{PlayerID: "p1", Username: "alice", PasswordHash: "hash"}

	err := s.storage.SaveRegisteredPlayer(s.ctx, rp)
	s.Require().NoError(err)

	got, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.PlayerID)

	_, err = s.storage.GetRegisteredPlayerByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Room tests

func (s *StorageSuite) TestCreateAndGetRoom() {
	room := s.newRoom("ROOM1")

	err := s.storage.CreateRoom(s.ctx, room)
	s.Require().NoError(err)

	got, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, got.Status)
	s.Equal(model.StartingPosition, got.Position)
	s.Equal(int64(0), got.Version)
}

func (s *StorageSuite) TestCreateDuplicateRoomConflicts() {
	room := s.newRoom("ROOM1")
	s.Require().NoError(s.storage.CreateRoom(s.ctx, room))

	err := s.storage.CreateRoom(s.ctx, s.newRoom("ROOM1"))
	s.ErrorIs(err, model.ErrConflict)
}

func (s *StorageSuite) TestGetMissingRoomFails() {
	_, err := s.storage.GetRoom(s.ctx, "nope")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestSaveRoomIncrementsVersion() {
	room := s.newRoom("ROOM1")
	s.Require().NoError(s.storage.CreateRoom(s.ctx, room))

	room.Status = model.RoomStatusPlaying
	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(int64(1), room.Version)

	got, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(int64(1), got.Version)
	s.Equal(model.RoomStatusPlaying, got.Status)
}

func (s *StorageSuite) TestSaveRoomDetectsLostUpdate() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, s.newRoom("ROOM1")))

	// Two writers load the same version
	first, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	second, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)

	first.Status = model.RoomStatusPlaying
	s.Require().NoError(s.storage.SaveRoom(s.ctx, first))

	second.Status = model.RoomStatusFinished
	err = s.storage.SaveRoom(s.ctx, second)
	s.ErrorIs(err, model.ErrConflict)

	// The first write won and is intact
	got, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusPlaying, got.Status)
}

func (s *StorageSuite) TestSaveMissingRoomFails() {
	err := s.storage.SaveRoom(s.ctx, s.newRoom("nope"))
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestGetRoomReturnsIndependentCopy() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, s.newRoom("ROOM1")))

	got, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	got.Status = model.RoomStatusFinished
	got.Moves = append(got.Moves, model.Move{From: "e2", To: "e4"})

	// Mutating the returned copy must not leak into the store
	fresh, err := s.storage.GetRoom(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, fresh.Status)
	s.Empty(fresh.Moves)
}

func (s *StorageSuite) TestDeleteAndExists() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, s.newRoom("ROOM1")))

	exists, err := s.storage.RoomExists(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ROOM1"))

	exists, err = s.storage.RoomExists(s.ctx, "ROOM1")
	s.Require().NoError(err)
	s.False(exists)
}
