package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/rules"
)

var (
	ErrNothingToUndo    = errors.New("no moves to undo")
	ErrInvalidUndoCount = errors.New("invalid undo count")
)

// Game owns one board, the side to move and the stack of executed moves.
// It is not safe for concurrent use.
type Game struct {
	board   *board.Board
	turn    core.Color
	history []board.Move
	state   core.State
	rng     *rand.Rand // promotion choices
}

// New starts a game from the standard position with White to move.
// A nil rng seeds one from the runtime.
func New(rng *rand.Rand) *Game {
	return NewFromBoard(board.New(), core.ColorWhite, rng)
}

// NewFromBoard starts a game from an arbitrary position. The game takes ownership of b.
func NewFromBoard(b *board.Board, turn core.Color, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := &Game{
		board: b,
		turn:  turn,
		state: core.StateOngoing,
		rng:   rng,
	}
	g.updateState()
	return g
}

// Board returns the live board. Callers must not modify it; use Place instead.
func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) Turn() core.Color {
	return g.turn
}

func (g *Game) State() core.State {
	return g.state
}

// Moves returns the executed moves, oldest first.
func (g *Game) Moves() []board.Move {
	moves := make([]board.Move, len(g.history))
	copy(moves, g.history)
	return moves
}

func (g *Game) MoveCount() int {
	return len(g.history)
}

// LastMove returns the most recent move, if any.
func (g *Game) LastMove() (board.Move, bool) {
	if len(g.history) == 0 {
		return board.Move{}, false
	}
	return g.history[len(g.history)-1], true
}

// LegalMoves lists every legal move of the side to move.
func (g *Game) LegalMoves() []board.Move {
	return rules.LegalMoves(g.board, g.turn)
}

// LegalMovesFrom lists the legal moves of the piece on sq.
func (g *Game) LegalMovesFrom(sq board.Square) []board.Move {
	return rules.LegalMovesFrom(g.board, sq)
}

// Play executes m if it is legal for the side to move and reports whether it did.
// A rejected move leaves the game untouched.
func (g *Game) Play(m board.Move) bool {
	src := g.board.At(m.From)
	if src.IsEmpty() || src.Color != g.turn {
		return false
	}
	if !g.isLegal(m) {
		return false
	}

	exec := board.NewMove(m.From, m.To)
	exec.Moved = src.Moved
	if rules.IsCastle(g.board, exec) {
		exec.Castle = true
		rules.ApplyCastle(g.board, exec)
	} else {
		exec.Captured = g.board.At(m.To)
		piece := g.board.Remove(m.From)
		piece.Moved = true
		g.board.Set(m.To, piece)
	}

	for _, pl := range g.promote() {
		if pl.Square == exec.To && !exec.Castle {
			exec.Promoted = true
			continue
		}
		exec.Swept = append(exec.Swept, pl)
	}
	g.turn = core.OppositeColor(g.turn)
	g.history = append(g.history, exec)
	g.updateState()
	return true
}

func (g *Game) isLegal(m board.Move) bool {
	for _, legal := range rules.LegalMovesFrom(g.board, m.From) {
		if legal.Same(m) {
			return true
		}
	}
	return false
}

// Undo reverts the most recent move, castles and promotions included.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	m := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	for _, pl := range m.Swept {
		g.board.Set(pl.Square, pl.Piece)
	}
	if m.Castle {
		rules.RevertCastle(g.board, m)
	} else {
		piece := g.board.Remove(m.To)
		if m.Promoted {
			piece.Kind = board.Pawn
		}
		piece.Moved = m.Moved
		g.board.Set(m.From, piece)
		g.board.Set(m.To, m.Captured)
	}

	g.turn = core.OppositeColor(g.turn)
	g.updateState()
	return nil
}

// UndoMoves reverts count moves, or none if fewer are available.
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidUndoCount, count)
	}
	if len(g.history) < count {
		return fmt.Errorf("%w: cannot undo %d moves, only %d available", ErrNothingToUndo, count, len(g.history))
	}
	for i := 0; i < count; i++ {
		if err := g.Undo(); err != nil {
			return err
		}
	}
	return nil
}

// Place puts p on sq outside of normal play and recomputes the state.
// It does not touch the move history.
func (g *Game) Place(sq board.Square, p board.Piece) {
	g.board.Set(sq, p)
	g.updateState()
}

// Clear empties sq outside of normal play and recomputes the state.
func (g *Game) Clear(sq board.Square) {
	g.Place(sq, board.Piece{})
}

// ResolveNoMoves settles a position in which the side to move has no legal
// move: checkmate awards the opponent, anything else is stalemate.
// It leaves the state alone while legal moves exist.
func (g *Game) ResolveNoMoves() core.State {
	if g.state.IsOver() || rules.HasLegalMoves(g.board, g.turn) {
		return g.state
	}
	if rules.InCheck(g.board, g.turn) {
		g.state = core.WinFor(core.OppositeColor(g.turn))
	} else {
		g.state = core.StateStalemate
	}
	return g.state
}

// promote replaces every pawn on the first or last row with a random
// bishop, knight, queen or rook of its color. It returns the pawns it replaced.
func (g *Game) promote() []board.Placed {
	var promoted []board.Placed
	for _, row := range [...]int{0, board.Size - 1} {
		for col := 0; col < board.Size; col++ {
			sq := board.MustSquare(row, col)
			p := g.board.At(sq)
			if p.Kind != board.Pawn {
				continue
			}
			np := p.Clone()
			np.Kind = board.PromotionKinds[g.rng.IntN(len(board.PromotionKinds))]
			g.board.Set(sq, np)
			promoted = append(promoted, board.Placed{Square: sq, Piece: p})
		}
	}
	return promoted
}

// updateState derives the state from the kings left: a lone king wins.
func (g *Game) updateState() {
	white := g.board.Count(board.King, core.ColorWhite)
	black := g.board.Count(board.King, core.ColorBlack)
	switch {
	case white+black != 1:
		g.state = core.StateOngoing
	case white == 1:
		g.state = core.StateWhiteWins
	default:
		g.state = core.StateBlackWins
	}
}
