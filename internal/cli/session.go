package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/engine"
	"chessbot/internal/game"
)

// LineReader is the input side of an interactive session. *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type Options struct {
	Depth     int
	Delay     time.Duration // pause after each simulated move
	Seed      uint64
	MaxMoves  int    // 0 means no limit
	Placement string // start position; empty for the standard one
}

// Session drives one game from the terminal.
type Session struct {
	view     *CLI
	game     *game.Game
	searcher map[core.Color]*engine.Searcher
	opts     Options
	log      zerolog.Logger
}

// NewSession sets up a game and one searcher per color. Promotions and
// engine move order are drawn from streams derived from opts.Seed, so a seed
// replays the same game.
func NewSession(view *CLI, opts Options, log zerolog.Logger) (*Session, error) {
	if opts.Depth < 0 || opts.Depth > engine.MaxDepth {
		return nil, fmt.Errorf("depth %d out of range 0-%d", opts.Depth, engine.MaxDepth)
	}

	b := board.New()
	if opts.Placement != "" {
		var err error
		if b, err = board.ParsePlacement(opts.Placement); err != nil {
			return nil, err
		}
	}

	return &Session{
		view: view,
		game: game.NewFromBoard(b, core.ColorWhite, rand.New(rand.NewPCG(opts.Seed, 1))),
		searcher: map[core.Color]*engine.Searcher{
			core.ColorWhite: engine.New(opts.Depth, rand.New(rand.NewPCG(opts.Seed, 2))),
			core.ColorBlack: engine.New(opts.Depth, rand.New(rand.NewPCG(opts.Seed, 3))),
		},
		opts: opts,
		log:  log.With().Str("component", "cli").Logger(),
	}, nil
}

func (s *Session) Game() *game.Game {
	return s.game
}

// Simulate lets the engine play both sides until the game ends, the move
// limit is hit or ctx is cancelled.
func (s *Session) Simulate(ctx context.Context) (core.State, error) {
	s.view.DisplayBoard(s.game.Board())

	for !s.game.State().IsOver() {
		if err := ctx.Err(); err != nil {
			return s.game.State(), err
		}
		if s.opts.MaxMoves > 0 && s.game.MoveCount() >= s.opts.MaxMoves {
			s.view.ShowMessage(fmt.Sprintf("Move limit of %d reached", s.opts.MaxMoves))
			return s.game.State(), nil
		}
		if err := s.engineMove(); err != nil {
			return s.game.State(), err
		}
		if s.game.State().IsOver() {
			break
		}

		select {
		case <-ctx.Done():
			return s.game.State(), ctx.Err()
		case <-time.After(s.opts.Delay):
		}
	}

	s.view.ShowGameOver(s.game.State())
	return s.game.State(), nil
}

// Play runs a human (White) against the engine (Black), reading commands
// from in. EOF or an interrupt ends the session.
func (s *Session) Play(ctx context.Context, in LineReader) (core.State, error) {
	s.view.ShowWelcome(s.opts.Depth)
	s.view.DisplayBoard(s.game.Board())

	for !s.game.State().IsOver() {
		if err := ctx.Err(); err != nil {
			return s.game.State(), err
		}

		if s.game.Turn() == core.ColorBlack {
			if err := s.engineMove(); err != nil {
				return s.game.State(), err
			}
			continue
		}

		if len(s.game.LegalMoves()) == 0 {
			s.game.ResolveNoMoves()
			break
		}

		line, err := in.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return s.game.State(), nil
		}
		if err != nil {
			return s.game.State(), err
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			s.view.ShowError(err)
			continue
		}
		if !s.handle(cmd) {
			return s.game.State(), nil
		}
	}

	s.view.ShowGameOver(s.game.State())
	return s.game.State(), nil
}

// handle runs one human command; false means quit.
func (s *Session) handle(cmd Command) bool {
	switch cmd.Type {
	case CmdQuit:
		return false

	case CmdMove:
		if !s.game.Play(cmd.Move) {
			s.view.ShowMessage(fmt.Sprintf("Illegal move: %s", cmd.Move))
			return true
		}
		s.log.Debug().Str("move", cmd.Move.String()).Msg("human move")
		s.view.DisplayBoard(s.game.Board())

	case CmdUndo:
		// each count takes back the human move and the reply to it
		plies := 2 * cmd.Count
		if err := s.game.UndoMoves(plies); err != nil {
			s.view.ShowError(err)
			return true
		}
		s.view.ShowMessage(fmt.Sprintf("%d move(s) undone", cmd.Count))
		s.view.DisplayBoard(s.game.Board())

	case CmdMoves:
		s.view.ShowLegalMoves(s.game.LegalMoves())

	case CmdHistory:
		s.view.ShowGameHistory(s.game.Moves())

	case CmdBoard:
		s.view.DisplayBoard(s.game.Board())

	case CmdTheme:
		if err := s.view.SetTheme(ColorTheme(strings.ToLower(cmd.Args[0]))); err != nil {
			s.view.ShowError(err)
		}

	case CmdHelp:
		s.view.ShowHelp()
	}
	return true
}

// engineMove plays the searcher's choice for the side to move, settling the
// game when it has none.
func (s *Session) engineMove() error {
	color := s.game.Turn()
	res := s.searcher[color].Search(s.game)
	if !res.Found {
		state := s.game.ResolveNoMoves()
		s.log.Debug().Str("color", color.String()).Stringer("state", state).Msg("no legal move")
		return nil
	}
	if !s.game.Play(res.BestMove) {
		return fmt.Errorf("engine chose illegal move %s", res.BestMove)
	}

	s.log.Debug().
		Str("color", color.String()).
		Str("move", res.BestMove.String()).
		Int("score", res.Score).
		Int("nodes", res.Nodes).
		Msg("engine move")

	s.view.ShowComputerMove(color, res)
	s.view.DisplayBoard(s.game.Board())
	return nil
}
