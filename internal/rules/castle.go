package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// IsCastle reports whether m, a King move onto its own Rook, is a legal castle.
// Both pieces must be unmoved, the squares between them empty and unattacked,
// and the King neither in check now nor after castling.
func IsCastle(b *board.Board, m board.Move) bool {
	king, rook := b.At(m.From), b.At(m.To)
	if king.Kind != board.King || rook.Kind != board.Rook || king.Color != rook.Color {
		return false
	}
	if king.Moved || rook.Moved {
		return false
	}
	if m.From.Row() != m.To.Row() || abs(m.To.Col()-m.From.Col()) < 2 {
		return false
	}

	opponent := core.OppositeColor(king.Color)
	if IsSquareAttacked(b, m.From, opponent) {
		return false
	}

	step := sign(m.To.Col() - m.From.Col())
	for col := m.From.Col() + step; col != m.To.Col(); col += step {
		sq := board.MustSquare(m.From.Row(), col)
		if !b.At(sq).IsEmpty() || IsSquareAttacked(b, sq, opponent) {
			return false
		}
	}

	sim := b.Clone()
	kingTo, _ := ApplyCastle(sim, m)
	return !IsSquareAttacked(sim, kingTo, opponent)
}

// CastleSquares returns where the King and the Rook land for castle m:
// the King two squares toward the Rook, the Rook on the square the King crossed.
func CastleSquares(m board.Move) (kingTo, rookTo board.Square) {
	step := sign(m.To.Col() - m.From.Col())
	kingTo = board.MustSquare(m.From.Row(), m.From.Col()+2*step)
	rookTo = board.MustSquare(m.From.Row(), m.From.Col()+step)
	return kingTo, rookTo
}

// ApplyCastle relocates King and Rook for castle m and marks both as moved.
// It does not validate m.
func ApplyCastle(b *board.Board, m board.Move) (kingTo, rookTo board.Square) {
	kingTo, rookTo = CastleSquares(m)
	king, rook := b.Remove(m.From), b.Remove(m.To)
	king.Moved, rook.Moved = true, true
	b.Set(kingTo, king)
	b.Set(rookTo, rook)
	return kingTo, rookTo
}

// RevertCastle undoes ApplyCastle, restoring both pieces unmoved.
func RevertCastle(b *board.Board, m board.Move) {
	kingTo, rookTo := CastleSquares(m)
	king, rook := b.Remove(kingTo), b.Remove(rookTo)
	king.Moved, rook.Moved = false, false
	b.Set(m.From, king)
	b.Set(m.To, rook)
}
