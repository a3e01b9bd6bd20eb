package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/engine"
	"chessbot/internal/game"
	"chessbot/internal/storage"
)

// ComputerMove is the move text asking the side to move's engine to play.
const ComputerMove = "cccc"

// MoveResult describes the last executed move.
type MoveResult struct {
	Move     string
	Color    core.Color
	Computer bool
	Score    int
	Depth    int
	Nodes    int
}

// Snapshot is a copy of a game's observable state, safe to use after the lock is released.
type Snapshot struct {
	ID        string
	Placement string
	Board     string
	Turn      core.Color
	State     core.State
	Moves     []string
	White     core.Player
	Black     core.Player
	Seed      uint64
	LastMove  *MoveResult
}

type session struct {
	id        string
	game      *game.Game
	white     *core.Player
	black     *core.Player
	seed      uint64
	searchers map[core.Color]*engine.Searcher
	last      *MoveResult
}

func (sess *session) player(c core.Color) *core.Player {
	if c == core.ColorWhite {
		return sess.white
	}
	return sess.black
}

func (sess *session) snapshot() Snapshot {
	b := sess.game.Board()
	moves := sess.game.Moves()
	text := make([]string, len(moves))
	for i, m := range moves {
		text[i] = m.String()
	}
	snap := Snapshot{
		ID:        sess.id,
		Placement: b.Placement(),
		Board:     b.ToASCII(),
		Turn:      sess.game.Turn(),
		State:     sess.game.State(),
		Moves:     text,
		White:     *sess.white,
		Black:     *sess.black,
		Seed:      sess.seed,
	}
	if sess.last != nil {
		last := *sess.last
		snap.LastMove = &last
	}
	return snap
}

// CreateGame starts a game from the standard position. A zero seed picks a random one;
// the seed fixes promotions and the engines' move ordering.
func (s *Service) CreateGame(whiteConfig, blackConfig core.PlayerConfig, seed uint64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.games) >= MaxGames {
		return Snapshot{}, ErrTooManyGames
	}

	if seed == 0 {
		seed = rand.Uint64()
	}

	sess := &session{
		id:        s.generateGameID(),
		game:      game.New(rand.New(rand.NewPCG(seed, 1))),
		white:     core.NewPlayer(whiteConfig, core.ColorWhite),
		black:     core.NewPlayer(blackConfig, core.ColorBlack),
		seed:      seed,
		searchers: make(map[core.Color]*engine.Searcher),
	}
	for i, p := range []*core.Player{sess.white, sess.black} {
		if p.Type == core.PlayerComputer {
			sess.searchers[p.Color] = engine.New(p.Depth, rand.New(rand.NewPCG(seed, uint64(i+2))))
		}
	}
	s.games[sess.id] = sess

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:           sess.id,
			InitialPlacement: sess.game.Board().Placement(),
			WhitePlayerID:    sess.white.ID,
			WhiteType:        int(sess.white.Type),
			WhiteDepth:       sess.white.Depth,
			BlackPlayerID:    sess.black.ID,
			BlackType:        int(sess.black.Type),
			BlackDepth:       sess.black.Depth,
			Seed:             seed,
			State:            sess.game.State().String(),
			StartTimeUTC:     time.Now().UTC(),
		})
	}

	s.log.Info().
		Str("game", sess.id).
		Str("white", sess.white.Type.String()).
		Str("black", sess.black.Type.String()).
		Uint64("seed", seed).
		Msg("game created")

	return sess.snapshot(), nil
}

// GetGame returns the current state of a game.
func (s *Service) GetGame(gameID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

// LegalMoves lists the legal moves of the side to move.
func (s *Service) LegalMoves(gameID string) (core.Color, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return core.ColorNone, nil, err
	}
	if sess.game.State().IsOver() {
		return sess.game.Turn(), []string{}, nil
	}
	moves := sess.game.LegalMoves()
	text := make([]string, len(moves))
	for i, m := range moves {
		text[i] = m.String()
	}
	return sess.game.Turn(), text, nil
}

// MakeMove plays a human move given as "e2e4" or "e2 e4", or the computer's
// move when text is ComputerMove.
func (s *Service) MakeMove(gameID, text string) (Snapshot, error) {
	if strings.EqualFold(strings.TrimSpace(text), ComputerMove) {
		return s.ComputerMove(gameID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	if sess.game.State().IsOver() {
		return Snapshot{}, ErrGameOver
	}
	turn := sess.game.Turn()
	if sess.player(turn).Type != core.PlayerHuman {
		return Snapshot{}, ErrNotHumanTurn
	}

	m, err := board.ParseMove(text)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	if !sess.game.Play(m) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	s.afterMove(sess, &MoveResult{Move: m.String(), Color: turn})
	return sess.snapshot(), nil
}

// ComputerMove lets the engine of the side to move pick and play a move.
// With no legal move the game is settled as checkmate or stalemate instead.
func (s *Service) ComputerMove(gameID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	if sess.game.State().IsOver() {
		return Snapshot{}, ErrGameOver
	}
	turn := sess.game.Turn()
	searcher, ok := sess.searchers[turn]
	if !ok {
		return Snapshot{}, ErrNotComputerTurn
	}

	start := time.Now()
	res := searcher.Search(sess.game)
	if !res.Found {
		before := sess.game.State()
		s.settle(sess)
		if sess.game.State() != before {
			s.recordOutcome(sess)
			s.waiter.WakeGame(sess.id)
		}
		return sess.snapshot(), nil
	}
	if !sess.game.Play(res.BestMove) {
		return Snapshot{}, fmt.Errorf("engine chose illegal move %s", res.BestMove)
	}

	s.log.Debug().
		Str("game", sess.id).
		Str("move", res.BestMove.String()).
		Int("score", res.Score).
		Int("nodes", res.Nodes).
		Dur("elapsed", time.Since(start)).
		Msg("engine move")

	s.afterMove(sess, &MoveResult{
		Move:     res.BestMove.String(),
		Color:    turn,
		Computer: true,
		Score:    res.Score,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
	})
	return sess.snapshot(), nil
}

// afterMove records the move, settles the game if the opponent cannot move
// and wakes waiting clients. Caller holds the lock.
func (s *Service) afterMove(sess *session, result *MoveResult) {
	sess.last = result
	s.settle(sess)

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:         sess.id,
			MoveNumber:     sess.game.MoveCount(),
			Move:           result.Move,
			PlacementAfter: sess.game.Board().Placement(),
			PlayerColor:    result.Color.String(),
			Score:          result.Score,
			MoveTimeUTC:    time.Now().UTC(),
		})
	}
	s.recordOutcome(sess)

	s.waiter.NotifyGame(sess.id, sess.game.MoveCount())
}

// recordOutcome persists and logs the final state of a finished game.
func (s *Service) recordOutcome(sess *session) {
	if !sess.game.State().IsOver() {
		return
	}
	if s.store != nil {
		s.store.UpdateGameState(sess.id, sess.game.State().String())
	}
	s.log.Info().Str("game", sess.id).Str("state", sess.game.State().String()).Msg("game over")
}

// settle resolves checkmate and stalemate for the side to move.
func (s *Service) settle(sess *session) {
	if sess.game.State().IsOver() {
		return
	}
	sess.game.ResolveNoMoves()
}

// UndoMoves takes back count moves. The game becomes playable again even if it was over.
func (s *Service) UndoMoves(gameID string, count int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}

	if err := sess.game.UndoMoves(count); err != nil {
		return Snapshot{}, err
	}
	sess.last = nil

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, sess.game.MoveCount())
		s.store.UpdateGameState(gameID, sess.game.State().String())
	}

	s.log.Debug().Str("game", gameID).Int("count", count).Msg("moves undone")
	s.waiter.NotifyGame(gameID, sess.game.MoveCount())
	return sess.snapshot(), nil
}

// DeleteGame removes a game from memory and storage.
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(gameID); err != nil {
		return err
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)

	if s.store != nil {
		s.store.DeleteGame(gameID)
	}

	s.log.Info().Str("game", gameID).Msg("game deleted")
	return nil
}

// WaitForChange returns a channel signalled when the game's move count differs
// from moveCount, when the wait times out or when ctx ends. It fires at once
// if the count already differs.
func (s *Service) WaitForChange(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	if sess.game.MoveCount() != moveCount {
		ready := make(chan struct{})
		close(ready)
		return ready, nil
	}
	return s.waiter.RegisterWait(ctx, gameID, moveCount), nil
}
