package rules

import (
	"context"
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// Engine implements Oracle with an embedded chess engine
type Engine struct{}

// NewEngine creates a new Engine
func NewEngine() *Engine {
	return &Engine{}
}

// Ensure Engine implements the interface
var _ Oracle = (*Engine)(nil)

// ValidateAndApply applies the candidate move to the position
func (e *Engine) ValidateAndApply(ctx context.Context, position string, candidate Candidate) (*Result, error) {
	opt, err := chess.FEN(position)
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: %w", position, err)
	}
	game := chess.NewGame(opt)
	pos := game.Position()

	uci := strings.ToLower(strings.TrimSpace(candidate.UCI()))
	move, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, model.ErrIllegalMove
	}
	san := chess.AlgebraicNotation{}.Encode(pos, move)
	if err := game.Move(move, nil); err != nil {
		return nil, model.ErrIllegalMove
	}

	result := &Result{
		Position:   game.FEN(),
		SAN:        san,
		SideToMove: colorOf(game.Position().Turn()),
	}

	switch game.Outcome() {
	case chess.WhiteWon:
		result.Terminal = true
		result.Winner = model.ColorWhite
	case chess.BlackWon:
		result.Terminal = true
		result.Winner = model.ColorBlack
	case chess.Draw:
		result.Terminal = true
	}

	return result, nil
}

func colorOf(c chess.Color) model.Color {
	if c == chess.White {
		return model.ColorWhite
	}
	return model.ColorBlack
}
