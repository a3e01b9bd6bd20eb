package board

import "chessbot/internal/core"

// Kind identifies a piece variant.
type Kind uint8

const (
	Empty Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionKinds are the kinds a pawn may turn into.
var PromotionKinds = [...]Kind{Bishop, Knight, Queen, Rook}

var kindLetters = [...]byte{'-', 'P', 'N', 'B', 'R', 'Q', 'K'}

// Material values indexed by Kind. Queen is 9.
var kindValues = [...]int{0, 1, 3, 3, 5, 9, 100}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "empty"
	}
}

// Value returns the material value of the kind.
func (k Kind) Value() int {
	return kindValues[k]
}

// Piece is the content of one square. Color is ColorNone for Empty.
type Piece struct {
	Kind  Kind
	Color core.Color
	Moved bool // set once the piece has left its starting square
}

// NewPiece returns an unmoved piece of the given kind and color.
func NewPiece(kind Kind, color core.Color) Piece {
	if kind == Empty {
		return Piece{}
	}
	return Piece{Kind: kind, Color: color}
}

func (p Piece) IsEmpty() bool { return p.Kind == Empty }

func (p Piece) Value() int { return p.Kind.Value() }

// Clone returns a piece of the same kind and color with the moved flag reset.
func (p Piece) Clone() Piece {
	return NewPiece(p.Kind, p.Color)
}

// Glyph returns the display letter: uppercase for White, lowercase for Black, '-' for empty.
func (p Piece) Glyph() byte {
	g := kindLetters[p.Kind]
	if p.Color == core.ColorBlack {
		g += 'a' - 'A'
	}
	return g
}

func (p Piece) String() string {
	return string(p.Glyph())
}

// pieceFromGlyph is the inverse of Glyph for non-empty pieces.
func pieceFromGlyph(g byte) (Piece, bool) {
	color := core.ColorWhite
	if g >= 'a' && g <= 'z' {
		color = core.ColorBlack
		g -= 'a' - 'A'
	}
	for k, letter := range kindLetters {
		if Kind(k) != Empty && letter == g {
			return NewPiece(Kind(k), color), true
		}
	}
	return Piece{}, false
}
