package board

import (
	"fmt"
	"strings"
)

// Move is a source/destination pair. Captured, Moved, Castle, Promoted and
// Swept are filled in when the move is executed and are what undo restores from.
type Move struct {
	From Square
	To   Square

	Captured Piece // piece found on To before the move
	Moved    bool  // moved flag of the source piece before the move
	Castle   bool  // executed as a castle: To holds the rook's square
	Promoted bool  // the moving pawn was promoted by the post-move sweep

	// Swept holds any other pawns the sweep promoted, as they were before.
	Swept []Placed
}

// Placed is a piece on a square.
type Placed struct {
	Square Square
	Piece  Piece
}

// NewMove returns an unexecuted move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// Same reports whether m and o have the same endpoints.
func (m Move) Same(o Move) bool {
	return m.From == o.From && m.To == o.To
}

// String returns the move in "e2e4" form.
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove reads "e2 e4" or "e2e4".
func ParseMove(text string) (Move, error) {
	s := strings.Join(strings.Fields(text), "")
	if len(s) != 4 {
		return Move{}, fmt.Errorf("%w: move %q", ErrInvalidCoordinate, text)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, err
	}
	return NewMove(from, to), nil
}
