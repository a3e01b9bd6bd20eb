// Package engine picks moves for computer players with a fixed-depth
// material search over a live game.
package engine

import (
	"math/rand/v2"
	"sync"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/game"
)

const (
	DefaultDepth = core.DefaultDepth
	MaxDepth     = 3
)

type SearchResult struct {
	BestMove board.Move
	Score    int // material balance from White's point of view
	Depth    int
	Nodes    int
	Found    bool
}

// Searcher runs a plain minimax over Play/Undo on the game it is given.
// The game is left exactly as it was found.
type Searcher struct {
	Depth int

	mu    sync.Mutex
	rng   *rand.Rand // shuffles candidate order; nil keeps scan order
	nodes int
}

// New returns a Searcher of the given depth. A nil rng makes the search
// deterministic: ties go to the first move in board scan order.
func New(depth int, rng *rand.Rand) *Searcher {
	return &Searcher{Depth: depth, rng: rng}
}

// BestMove returns the best move for the side to move and its score.
// ok is false when the side to move has no legal move.
func (s *Searcher) BestMove(g *game.Game) (m board.Move, score int, ok bool) {
	res := s.Search(g)
	return res.BestMove, res.Score, res.Found
}

// Search is BestMove with search statistics.
func (s *Searcher) Search(g *game.Game) SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = 0
	m, score, ok := s.search(g, s.Depth)
	return SearchResult{
		BestMove: m,
		Score:    score,
		Depth:    s.Depth,
		Nodes:    s.nodes,
		Found:    ok,
	}
}

// search scores each move as the signed value of what it captures plus the
// best reply score depth-1 plies down. White maximises and Black minimises;
// the first move reaching the best score wins ties.
func (s *Searcher) search(g *game.Game, depth int) (best board.Move, bestScore int, found bool) {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return board.Move{}, 0, false
	}
	if s.rng != nil {
		s.rng.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
	}

	mover := g.Turn()
	orient := 1
	if mover == core.ColorBlack {
		orient = -1
	}

	for _, m := range moves {
		s.nodes++
		score := orient * captureValue(g.Board(), m, mover)
		if depth > 0 {
			if !g.Play(m) {
				continue
			}
			_, reply, _ := s.search(g, depth-1)
			if err := g.Undo(); err != nil {
				panic(err)
			}
			score += reply
		}
		if !found || orient*score > orient*bestScore {
			best, bestScore, found = m, score, true
		}
	}
	return best, bestScore, found
}

// captureValue is the value of the opponent piece on m.To, zero for a
// quiet move or a castle onto an own rook.
func captureValue(b *board.Board, m board.Move, mover core.Color) int {
	target := b.At(m.To)
	if target.IsEmpty() || target.Color == mover {
		return 0
	}
	return target.Value()
}
