// Package board holds the square grid, pieces and moves of a chess position.
package board

import (
	"fmt"
	"strings"

	"chessbot/internal/core"
)

const (
	StartingPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is an 8x8 grid of pieces indexed [row][col]. The zero value is an empty board.
type Board struct {
	squares [Size][Size]Piece
}

// New returns a board in the standard starting position.
func New() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset seeds the standard starting position.
func (b *Board) Reset() {
	b.Clear()
	for c := 0; c < Size; c++ {
		b.squares[0][c] = NewPiece(backRank[c], core.ColorBlack)
		b.squares[1][c] = NewPiece(Pawn, core.ColorBlack)
		b.squares[6][c] = NewPiece(Pawn, core.ColorWhite)
		b.squares[7][c] = NewPiece(backRank[c], core.ColorWhite)
	}
}

// Clear empties every square.
func (b *Board) Clear() {
	b.squares = [Size][Size]Piece{}
}

func (b *Board) At(sq Square) Piece {
	return b.squares[sq.row][sq.col]
}

func (b *Board) Set(sq Square, p Piece) {
	b.squares[sq.row][sq.col] = p
}

// Remove empties sq and returns what was there.
func (b *Board) Remove(sq Square) Piece {
	p := b.squares[sq.row][sq.col]
	b.squares[sq.row][sq.col] = Piece{}
	return p
}

// Clone returns a deep copy, moved flags included.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Equal reports whether both boards hold the same pieces with the same flags.
func (b *Board) Equal(o *Board) bool {
	return b.squares == o.squares
}

// Each calls fn for every square in scan order: row 0 to 7, column 0 to 7.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			fn(allSquares[r*Size+c], b.squares[r][c])
		}
	}
}

// Count returns how many pieces of kind k and color c are on the board.
func (b *Board) Count(k Kind, c core.Color) int {
	n := 0
	b.Each(func(_ Square, p Piece) {
		if p.Kind == k && p.Color == c {
			n++
		}
	})
	return n
}

// ParsePlacement reads the piece placement field of a FEN string.
// All pieces start unmoved except pawns away from their home row.
func ParsePlacement(placement string) (*Board, error) {
	ranks := strings.Split(strings.TrimSpace(placement), "/")
	if len(ranks) != Size {
		return nil, fmt.Errorf("invalid placement: expected %d ranks, got %d", Size, len(ranks))
	}

	b := &Board{}
	for r := 0; r < Size; r++ {
		file := 0
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= Size {
				return nil, fmt.Errorf("invalid placement: too many pieces in rank %d", Size-r)
			}
			p, ok := pieceFromGlyph(ch)
			if !ok {
				return nil, fmt.Errorf("invalid placement: unknown piece %q", ch)
			}
			if p.Kind == Pawn {
				if r == 0 || r == Size-1 {
					return nil, fmt.Errorf("invalid placement: pawn on rank %d", Size-r)
				}
				home := 6
				if p.Color == core.ColorBlack {
					home = 1
				}
				p.Moved = r != home
			}
			b.squares[r][file] = p
			file++
		}
		if file != Size {
			return nil, fmt.Errorf("invalid placement: rank %d has %d files", Size-r, file)
		}
	}
	return b, nil
}

// Placement returns the FEN piece placement field for the board.
func (b *Board) Placement() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < Size; c++ {
			p := b.squares[r][c]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Glyph())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// ToASCII renders the board rank 8 first with a file legend on the last line.
func (b *Board) ToASCII() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		sb.WriteString(fmt.Sprintf("%d ", Size-r))
		for c := 0; c < Size; c++ {
			sb.WriteByte(b.squares[r][c].Glyph())
			if c+1 < Size {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("# a b c d e f g h")
	return sb.String()
}

func (b *Board) String() string {
	return b.ToASCII()
}
