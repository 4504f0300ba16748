package rules

import (
	"context"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// Candidate is a move submitted for validation, expressed as origin and
// destination squares in algebraic coordinates, plus an optional promotion
// piece letter (q, r, b, n)
type Candidate struct {
	From      string
	To        string
	Promotion string
}

// UCI returns the candidate in UCI notation (e.g. "e2e4", "e7e8q")
func (c Candidate) UCI() string {
	return c.From + c.To + c.Promotion
}

// Result is the oracle's verdict on a legal move
type Result struct {
	// Position is the resulting position in FEN
	Position string
	// SAN is the applied move in standard algebraic notation
	SAN string
	// SideToMove is the color to move in the resulting position
	SideToMove model.Color
	// Terminal is true when the resulting position ends the game:
	// no legal replies for the side to move, or a forced draw condition
	Terminal bool
	// Winner is set when the game ended decisively, empty on draws
	Winner model.Color
}

// Oracle validates a candidate move against a position and computes the
// resulting position. Implementations are stateless per call and never
// persist anything.
type Oracle interface {
	// ValidateAndApply returns the result of applying the candidate to the
	// position, or model.ErrIllegalMove if the move is not legal
	ValidateAndApply(ctx context.Context, position string, candidate Candidate) (*Result, error)
}
