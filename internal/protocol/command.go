package protocol

import (
	"encoding/json"
	"errors"
)

// CommandType tags an inbound frame
type CommandType string

const (
	CommandMove   CommandType = "move"
	CommandReady  CommandType = "ready"
	CommandChat   CommandType = "chat"
	CommandSignal CommandType = "signal"
)

// Frame errors
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownCommand = errors.New("unknown command type")
)

// MoveCommand asks to play a move, in origin/destination coordinates with an
// optional promotion piece letter
type MoveCommand struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// ChatCommand relays a free-text message to the room
type ChatCommand struct {
	Message string `json:"message"`
}

// SignalCommand relays an opaque payload (e.g. a call peer identifier) to the
// room; the server never inspects it
type SignalCommand struct {
	Payload json.RawMessage `json:"payload"`
}

// Command is the decoded form of an inbound frame: exactly one variant is
// populated, selected by Type
type Command struct {
	Type   CommandType
	Move   *MoveCommand
	Chat   *ChatCommand
	Signal *SignalCommand
}

// envelope is the wire form of an inbound frame
type envelope struct {
	Type CommandType `json:"type"`
	MoveCommand
	ChatCommand
	SignalCommand
}

// ParseCommand decodes an inbound frame into a typed command.
// Unknown types return ErrUnknownCommand so callers can drop the frame
// without terminating the connection.
func ParseCommand(data []byte) (*Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedFrame
	}

	switch env.Type {
	case CommandMove:
		if env.From == "" || env.To == "" {
			return nil, ErrMalformedFrame
		}
		return &Command{Type: CommandMove, Move: &env.MoveCommand}, nil
	case CommandReady:
		return &Command{Type: CommandReady}, nil
	case CommandChat:
		if env.Message == "" {
			return nil, ErrMalformedFrame
		}
		return &Command{Type: CommandChat, Chat: &env.ChatCommand}, nil
	case CommandSignal:
		if len(env.Payload) == 0 {
			return nil, ErrMalformedFrame
		}
		return &Command{Type: CommandSignal, Signal: &env.SignalCommand}, nil
	default:
		return nil, ErrUnknownCommand
	}
}
