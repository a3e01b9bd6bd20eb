// Package main runs chess games in the terminal: engine self-play or a human
// against the engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"chessbot/internal/cli"
	"chessbot/internal/engine"
	"chessbot/internal/logx"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run plays one session and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		mode      = fs.String("mode", "simulate", "Game mode: simulate (engine vs engine) or play (you vs engine)")
		depth     = fs.Int("depth", engine.DefaultDepth, fmt.Sprintf("Engine search depth (0-%d)", engine.MaxDepth))
		delay     = fs.Duration("delay", 500*time.Millisecond, "Pause between simulated moves")
		seed      = fs.Uint64("seed", 0, "Random seed for promotions and move order (0 picks one)")
		theme     = fs.String("theme", "", "Board theme: off, brown, green, gray (default brown on a terminal)")
		maxMoves  = fs.Int("max-moves", 200, "Stop a simulation after this many moves (0 for no limit)")
		placement = fs.String("placement", "", "Start from this FEN piece placement instead of the standard position")
		logLevel  = fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logx.New(stderr, logx.ParseLevel(*logLevel))

	if *seed == 0 {
		*seed = rand.Uint64()
	}

	view := cli.New(stdout)
	if *theme == "" {
		*theme = string(cli.ThemeOff)
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			*theme = string(cli.ThemeBrown)
		}
	}
	if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	session, err := cli.NewSession(view, cli.Options{
		Depth:     *depth,
		Delay:     *delay,
		Seed:      *seed,
		MaxMoves:  *maxMoves,
		Placement: *placement,
	}, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log.Info().Uint64("seed", *seed).Str("mode", *mode).Int("depth", *depth).Msg("starting game")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "simulate":
		view.ShowMessage(fmt.Sprintf("Engine self-play at depth %d, seed %d", *depth, *seed))
		_, err = session.Simulate(ctx)

	case "play":
		var rl *readline.Instance
		rl, err = readline.NewEx(&readline.Config{
			Prompt:          "[w]> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer rl.Close()
		_, err = session.Play(ctx, rl)

	default:
		fmt.Fprintf(stderr, "unknown mode %q (use simulate or play)\n", *mode)
		return 2
	}

	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("game aborted")
		return 1
	}
	return 0
}
