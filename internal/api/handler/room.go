package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kingsgambit/kingsgambit-go/internal/api/middleware"
	"github.com/kingsgambit/kingsgambit-go/internal/api/response"
	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	roomService *room.Service
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *room.Service) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	created, err := h.roomService.Create(r.Context(), *identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created, model.ColorWhite))
}

// Join handles POST /api/v1/rooms/{roomId}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	joined, err := h.roomService.Join(r.Context(), roomID, *identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	_, color := joined.SeatOf(identity.ID)
	response.JSON(w, http.StatusOK, response.RoomFromModel(joined, color))
}

// Get handles GET /api/v1/rooms/{roomId}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	snapshot, color, err := h.roomService.Snapshot(r.Context(), roomID, identity.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(snapshot, color))
}
