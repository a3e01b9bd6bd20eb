// Package rules decides move legality on a board.Board.
//
// Each piece kind is described by an entry in a dispatch table holding its
// direction vectors and two pure functions: one testing whether the piece can
// physically reach a square, one listing candidate destinations. Check
// safety and castling are layered on top by CanMove.
package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

type reachFunc func(b *board.Board, m board.Move, dirs [][2]int) bool

type targetFunc func(b *board.Board, from board.Square, dirs [][2]int) []board.Square

type variant struct {
	dirs    [][2]int
	reaches reachFunc
	targets targetFunc
}

var (
	orthogonals   = [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	diagonals     = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	allDirections = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	knightJumps   = [][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

var variants = [...]variant{
	board.Empty:  {},
	board.Pawn:   {reaches: pawnReaches, targets: pawnTargets},
	board.Knight: {dirs: knightJumps, reaches: knightReaches, targets: stepTargets},
	board.Bishop: {dirs: diagonals, reaches: walk, targets: slideTargets},
	board.Rook:   {dirs: orthogonals, reaches: walk, targets: slideTargets},
	board.Queen:  {dirs: allDirections, reaches: walk, targets: slideTargets},
	board.King:   {dirs: allDirections, reaches: adjacent, targets: kingTargets},
}

// IsPseudoLegalCapture is the occupancy check shared by every piece: the
// source holds a piece and the destination is empty or holds an opponent.
// A King may also target an own Rook, which is how castling is expressed.
func IsPseudoLegalCapture(b *board.Board, m board.Move) bool {
	src, dst := b.At(m.From), b.At(m.To)
	if capturable(src, dst) {
		return true
	}
	return src.Kind == board.King && dst.Kind == board.Rook && dst.Color == src.Color
}

// CanMove reports whether m is legal: the piece can reach the destination
// and its own King is not attacked afterwards.
func CanMove(b *board.Board, m board.Move) bool {
	if m.From == m.To || !IsPseudoLegalCapture(b, m) {
		return false
	}
	if IsCastle(b, m) {
		return true
	}
	if !reaches(b, m) {
		return false
	}
	return !IsKingInCheck(b, m)
}

// LegalMovesFrom returns every legal move of the piece on sq.
func LegalMovesFrom(b *board.Board, sq board.Square) []board.Move {
	p := b.At(sq)
	if p.IsEmpty() {
		return nil
	}
	v := variants[p.Kind]

	var moves []board.Move
	for _, to := range v.targets(b, sq, v.dirs) {
		m := board.NewMove(sq, to)
		if CanMove(b, m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// LegalMoves returns every legal move for color c in board scan order.
func LegalMoves(b *board.Board, c core.Color) []board.Move {
	var moves []board.Move
	for _, sq := range board.Squares() {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != c {
			continue
		}
		moves = append(moves, LegalMovesFrom(b, sq)...)
	}
	return moves
}

// HasLegalMoves returns true if color c has at least one legal move.
func HasLegalMoves(b *board.Board, c core.Color) bool {
	for _, sq := range board.Squares() {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != c {
			continue
		}
		if len(LegalMovesFrom(b, sq)) > 0 {
			return true
		}
	}
	return false
}

func capturable(src, dst board.Piece) bool {
	if src.IsEmpty() {
		return false
	}
	return dst.IsEmpty() || dst.Color != src.Color
}

// reaches is the geometric test without check safety.
func reaches(b *board.Board, m board.Move) bool {
	src := b.At(m.From)
	if !capturable(src, b.At(m.To)) {
		return false
	}
	v := variants[src.Kind]
	if v.reaches == nil {
		return false
	}
	return v.reaches(b, m, v.dirs)
}
