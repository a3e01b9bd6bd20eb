package board

import (
	"errors"
	"fmt"
)

// Size is the number of rows and columns on the board.
const Size = 8

var (
	// ErrOutOfRange is returned for a row or column outside [0, Size).
	ErrOutOfRange = errors.New("square out of range")

	// ErrInvalidCoordinate is returned for malformed coordinate text.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Square is a row/column pair. Row 0 is rank 8, column 0 is file a.
// The zero value is a8; construct squares with NewSquare or ParseSquare.
type Square struct {
	row, col int
}

// NewSquare returns the square at row, col. It never clamps.
func NewSquare(row, col int) (Square, error) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return Square{}, fmt.Errorf("%w: row %d, column %d", ErrOutOfRange, row, col)
	}
	return Square{row: row, col: col}, nil
}

// MustSquare is like NewSquare but panics on an out of range square.
func MustSquare(row, col int) Square {
	sq, err := NewSquare(row, col)
	if err != nil {
		panic(err)
	}
	return sq
}

// ParseSquare converts "e2" style text to a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	return NewSquare(Size-int(s[1]-'0'), int(s[0]-'a'))
}

func (s Square) Row() int { return s.row }
func (s Square) Col() int { return s.col }

// Offset returns the square dr rows and dc columns away.
func (s Square) Offset(dr, dc int) (Square, error) {
	return NewSquare(s.row+dr, s.col+dc)
}

// String formats the square in algebraic notation.
func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+s.col, Size-s.row)
}

var allSquares = func() (all [Size * Size]Square) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			all[r*Size+c] = Square{row: r, col: c}
		}
	}
	return all
}()

// Squares returns every square in scan order: row 0 to 7, column 0 to 7.
func Squares() [Size * Size]Square {
	return allSquares
}
