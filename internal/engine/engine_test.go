package engine

import (
	"math/rand/v2"
	"testing"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
	"chessbot/internal/testutil"
)

func TestBestMoveSingleCapture(t *testing.T) {
	// the rook on a1 can take the knight on a5 and nothing else can capture
	for depth := 0; depth <= 2; depth++ {
		g := newGame(t, "4k3/8/8/n7/8/8/8/R3K3", core.ColorWhite)
		m, score, ok := New(depth, nil).BestMove(g)
		testutil.AssertTrue(t, ok, "depth %d", depth)
		testutil.AssertEqual(t, m.String(), "a1a5", "depth %d", depth)
		testutil.AssertEqual(t, score, 3, "depth %d", depth)
	}
}

func TestBestMoveBlackMinimises(t *testing.T) {
	g := newGame(t, "r3k3/8/8/8/8/8/8/N3K3", core.ColorBlack)
	m, score, ok := New(0, nil).BestMove(g)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, m.String(), "a8a1")
	testutil.AssertEqual(t, score, -3)
}

func TestBestMoveSeesRecapture(t *testing.T) {
	// taking the pawn on d5 loses the queen to the rook on d8
	placement := "3r3k/8/8/3p4/8/8/8/3Q3K"

	g := newGame(t, placement, core.ColorWhite)
	m, score, _ := New(0, nil).BestMove(g)
	testutil.AssertEqual(t, m.String(), "d1d5", "depth 0 grabs the pawn")
	testutil.AssertEqual(t, score, 1)

	g = newGame(t, placement, core.ColorWhite)
	m, score, _ = New(1, nil).BestMove(g)
	if m.String() == "d1d5" {
		t.Errorf("BestMove() at depth 1 = d1d5, want a move that keeps the queen")
	}
	testutil.AssertEqual(t, score, 0)
}

func TestBestMoveNoLegalMoves(t *testing.T) {
	g := newGame(t, "k7/8/1Q6/8/8/8/8/2K5", core.ColorBlack)
	_, score, ok := New(DefaultDepth, nil).BestMove(g)
	testutil.AssertFalse(t, ok)
	testutil.AssertEqual(t, score, 0)
}

func TestSearchLeavesGameUnchanged(t *testing.T) {
	g := game.New(rand.New(rand.NewPCG(1, 1)))
	for _, s := range []string{"e2e4", "d7d5"} {
		m, err := board.ParseMove(s)
		testutil.AssertNoError(t, err)
		testutil.AssertTrue(t, g.Play(m), "Play(%s)", s)
	}
	before := g.Board().Clone()

	res := New(DefaultDepth, rand.New(rand.NewPCG(2, 2))).Search(g)
	testutil.AssertTrue(t, res.Found)
	testutil.AssertTrue(t, res.Nodes > 0)
	testutil.AssertEqual(t, res.Depth, DefaultDepth)

	testutil.AssertTrue(t, g.Board().Equal(before), "board restored")
	testutil.AssertEqual(t, g.Turn(), core.ColorWhite)
	testutil.AssertEqual(t, g.MoveCount(), 2)
	testutil.AssertTrue(t, g.Play(res.BestMove), "best move %s is legal", res.BestMove)
}

func TestSearchKeepsEdgePawn(t *testing.T) {
	g := newGame(t, "4k3/8/8/8/8/8/8/4K3", core.ColorWhite)
	g.Place(board.MustSquare(board.Size-1, 0), board.Piece{Kind: board.Pawn, Color: core.ColorWhite, Moved: true})
	before := g.Board().Clone()

	res := New(2, nil).Search(g)
	testutil.AssertTrue(t, res.Found)
	testutil.AssertTrue(t, g.Board().Equal(before), "edge pawn survives the search")
}

func TestSearchDeterministicWithoutRand(t *testing.T) {
	a, sa, _ := New(1, nil).BestMove(game.New(rand.New(rand.NewPCG(1, 1))))
	b, sb, _ := New(1, nil).BestMove(game.New(rand.New(rand.NewPCG(9, 9))))
	testutil.AssertEqual(t, a.String(), b.String())
	testutil.AssertEqual(t, sa, sb)
}

func newGame(t *testing.T, placement string, turn core.Color) *game.Game {
	t.Helper()
	b, err := board.ParsePlacement(placement)
	if err != nil {
		t.Fatalf("ParsePlacement(%q) error: %v", placement, err)
	}
	return game.NewFromBoard(b, turn, rand.New(rand.NewPCG(1, 1)))
}
