package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// IsSquareAttacked returns true if a piece of color by can physically reach sq.
// Kings count by adjacency. Check safety is not applied to the attackers.
func IsSquareAttacked(b *board.Board, sq board.Square, by core.Color) bool {
	for _, from := range board.Squares() {
		p := b.At(from)
		if p.IsEmpty() || p.Color != by {
			continue
		}
		m := board.NewMove(from, sq)
		if p.Kind == board.King {
			if isAdjacent(m) {
				return true
			}
			continue
		}
		if reaches(b, m) {
			return true
		}
	}
	return false
}

// FindKing finds the king of the given color on the board.
func FindKing(b *board.Board, c core.Color) (board.Square, bool) {
	for _, sq := range board.Squares() {
		p := b.At(sq)
		if p.Kind == board.King && p.Color == c {
			return sq, true
		}
	}
	return board.Square{}, false
}

// IsKingInCheck applies m to a copy of b and reports whether the mover's King
// is attacked there. A side without a King is never in check.
func IsKingInCheck(b *board.Board, m board.Move) bool {
	mover := b.At(m.From)
	sim := b.Clone()
	sim.Set(m.To, sim.Remove(m.From))
	return InCheck(sim, mover.Color)
}

// InCheck returns true if the King of color c is attacked on b as it stands.
func InCheck(b *board.Board, c core.Color) bool {
	king, ok := FindKing(b, c)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, core.OppositeColor(c))
}
