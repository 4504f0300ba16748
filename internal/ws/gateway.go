package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
	"github.com/kingsgambit/kingsgambit-go/internal/protocol"
	"github.com/kingsgambit/kingsgambit-go/internal/rules"
	"github.com/kingsgambit/kingsgambit-go/internal/services/auth"
	"github.com/kingsgambit/kingsgambit-go/internal/services/game"
	"github.com/kingsgambit/kingsgambit-go/internal/services/lobby"
	"github.com/kingsgambit/kingsgambit-go/internal/services/room"
)

// Gateway upgrades authorized HTTP requests into room websocket sessions
// and dispatches inbound frames to the coordinators
type Gateway struct {
	auth     *auth.Service
	rooms    *room.Service
	lobby    *lobby.Coordinator
	games    *game.Coordinator
	groups   *GroupManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewGateway creates a new Gateway
func NewGateway(
	authService *auth.Service,
	roomService *room.Service,
	lobbyCoordinator *lobby.Coordinator,
	gameCoordinator *game.Coordinator,
	groups *GroupManager,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		auth:   authService,
		rooms:  roomService,
		lobby:  lobbyCoordinator,
		games:  gameCoordinator,
		groups: groups,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a separately-served frontend
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws.gateway")),
	}
}

// HandleConnection authenticates the request, authorizes it against the
// room's seats, and runs the connection until the peer drops. A request
// that cannot be resolved to a seated identity is refused before the
// upgrade; an unauthenticated socket never joins a group.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["roomId"])

	session, err := g.auth.ValidateSession(bearerToken(r))
	if err != nil {
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	snapshot, color, err := g.rooms.Snapshot(r.Context(), roomID, session.PlayerID)
	if errors.Is(err, model.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, model.ErrNotASeatHolder) {
		http.Error(w, "not seated in this room", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed",
			slog.String("room", string(roomID)),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(roomID, conn, session.PlayerID, g.logger)
	g.groups.Register(roomID, client)

	go client.writePump()
	client.Enqueue(protocol.NewSnapshot(snapshot, color))

	client.readPump(g.dispatch)

	g.groups.Unregister(roomID, client)

	// The request context died with the connection
	if err := g.games.HandleDisconnect(context.Background(), roomID, session.PlayerID); err != nil {
		g.logger.Error("disconnect settlement failed",
			slog.String("room", string(roomID)),
			slog.String("player_id", string(session.PlayerID)),
			slog.String("error", err.Error()))
	}
}

// dispatch routes one inbound frame. Unknown and malformed frames are
// dropped without terminating the connection; command failures go back
// to the sending connection as error frames.
func (g *Gateway) dispatch(client *Client, raw []byte) {
	ctx := context.Background()
	roomID := client.roomID

	cmd, err := protocol.ParseCommand(raw)
	if err != nil {
		g.logger.Debug("dropping frame",
			slog.String("room", string(roomID)),
			slog.String("player_id", string(client.playerID)),
			slog.String("error", err.Error()))
		return
	}

	switch cmd.Type {
	case protocol.CommandReady:
		_, err = g.lobby.MarkReady(ctx, roomID, client.playerID)
	case protocol.CommandMove:
		_, err = g.games.SubmitMove(ctx, roomID, client.playerID, rules.Candidate{
			From:      cmd.Move.From,
			To:        cmd.Move.To,
			Promotion: cmd.Move.Promotion,
		}, client.channelID)
	case protocol.CommandChat:
		err = g.games.Chat(ctx, roomID, client.playerID, cmd.Chat.Message, client.channelID)
	case protocol.CommandSignal:
		err = g.games.Signal(ctx, roomID, client.playerID, cmd.Signal.Payload, client.channelID)
	}

	if err == nil {
		return
	}

	// Out-of-phase commands and commands from a connection that lost its
	// seat reflect a stale client; drop them rather than error
	if errors.Is(err, model.ErrInvalidState) || errors.Is(err, model.ErrNotASeatHolder) {
		g.logger.Debug("dropping stale command",
			slog.String("room", string(roomID)),
			slog.String("player_id", string(client.playerID)),
			slog.String("command", string(cmd.Type)),
			slog.String("error", err.Error()))
		return
	}

	client.Enqueue(errorEvent(err))
}

// errorEvent maps a coordinator error to the error frame sent back to
// the requesting connection
func errorEvent(err error) *protocol.ErrorEvent {
	ev := &protocol.ErrorEvent{Type: protocol.EventError, Message: err.Error()}
	switch {
	case errors.Is(err, model.ErrNotYourTurn):
		ev.Code = protocol.CodeNotYourTurn
	case errors.Is(err, model.ErrIllegalMove):
		ev.Code = protocol.CodeIllegalMove
	case errors.Is(err, model.ErrInvalidState):
		ev.Code = protocol.CodeInvalidState
	case errors.Is(err, model.ErrNotASeatHolder):
		ev.Code = protocol.CodeNotASeat
	case errors.Is(err, model.ErrRoomNotFound):
		ev.Code = protocol.CodeRoomNotFound
	case errors.Is(err, model.ErrConflict):
		ev.Code = protocol.CodeTransient
		ev.Message = "room is busy, retry"
	default:
		ev.Code = protocol.CodeTransient
		ev.Message = "internal error"
	}
	return ev
}

// bearerToken pulls the session token from the Authorization header or,
// for browser websocket clients that cannot set headers, the query string
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
