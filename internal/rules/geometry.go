package rules

import (
	"chessbot/internal/board"
	"chessbot/internal/core"
)

// forward returns the row step of a pawn of color c.
func forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func delta(m board.Move) (dr, dc int) {
	return m.To.Row() - m.From.Row(), m.To.Col() - m.From.Col()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// walk follows each direction from m.From until it meets m.To, an occupied
// square or the edge of the board.
func walk(b *board.Board, m board.Move, dirs [][2]int) bool {
	for _, d := range dirs {
		sq := m.From
		for {
			next, err := sq.Offset(d[0], d[1])
			if err != nil {
				break
			}
			if next == m.To {
				return true
			}
			if !b.At(next).IsEmpty() {
				break
			}
			sq = next
		}
	}
	return false
}

func isAdjacent(m board.Move) bool {
	dr, dc := delta(m)
	return (dr != 0 || dc != 0) && abs(dr) <= 1 && abs(dc) <= 1
}

func adjacent(_ *board.Board, m board.Move, _ [][2]int) bool {
	return isAdjacent(m)
}

func knightReaches(_ *board.Board, m board.Move, _ [][2]int) bool {
	dr, dc := abs(m.To.Row()-m.From.Row()), abs(m.To.Col()-m.From.Col())
	return dr+dc == 3 && max(dr, dc) == 2
}

func pawnReaches(b *board.Board, m board.Move, _ [][2]int) bool {
	p := b.At(m.From)
	target := b.At(m.To)
	dir := forward(p.Color)
	dr, dc := delta(m)

	switch {
	case dc == 0 && dr == dir:
		return target.IsEmpty()
	case dc == 0 && dr == 2*dir:
		if p.Moved || !target.IsEmpty() {
			return false
		}
		mid, err := m.From.Offset(dir, 0)
		return err == nil && b.At(mid).IsEmpty()
	case abs(dc) == 1 && dr == dir:
		return !target.IsEmpty() && target.Color != p.Color
	}
	return false
}

// stepTargets lists the on-board squares one delta away from from.
func stepTargets(_ *board.Board, from board.Square, dirs [][2]int) []board.Square {
	targets := make([]board.Square, 0, len(dirs))
	for _, d := range dirs {
		sq, err := from.Offset(d[0], d[1])
		if err != nil {
			continue
		}
		targets = append(targets, sq)
	}
	return targets
}

// slideTargets lists squares along each direction up to and including the first occupied one.
func slideTargets(b *board.Board, from board.Square, dirs [][2]int) []board.Square {
	var targets []board.Square
	for _, d := range dirs {
		sq := from
		for {
			next, err := sq.Offset(d[0], d[1])
			if err != nil {
				break
			}
			targets = append(targets, next)
			if !b.At(next).IsEmpty() {
				break
			}
			sq = next
		}
	}
	return targets
}

func pawnTargets(b *board.Board, from board.Square, _ [][2]int) []board.Square {
	dir := forward(b.At(from).Color)
	return stepTargets(b, from, [][2]int{{dir, 0}, {2 * dir, 0}, {dir, -1}, {dir, 1}})
}

// kingTargets adds the corner squares of the King's row as castle candidates.
func kingTargets(b *board.Board, from board.Square, dirs [][2]int) []board.Square {
	targets := stepTargets(b, from, dirs)
	for _, col := range [...]int{0, board.Size - 1} {
		if abs(col-from.Col()) < 2 {
			continue
		}
		targets = append(targets, board.MustSquare(from.Row(), col))
	}
	return targets
}
