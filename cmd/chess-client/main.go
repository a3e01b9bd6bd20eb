// Package main implements an interactive debugging client for the chess server API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"chessbot/internal/client"
)

func main() {
	var (
		apiURL  = flag.String("api", "http://localhost:8080", "Chess API base URL")
		verbose = flag.Bool("v", false, "Trace every API request")
		history = flag.String("history", ".chess_history", "Readline history file (empty disables)")
	)
	flag.Parse()

	c := client.New(*apiURL)
	if *verbose {
		c.Trace = os.Stdout
	}
	registry := client.NewRegistry(c, os.Stdout)
	registry.Color = term.IsTerminal(int(os.Stdout.Fd()))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          registry.Prompt(),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("Chess Debug Client\nAPI: %s\nType 'help' for commands\n\n", c.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for {
		rl.SetPrompt(registry.Prompt())
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}

		if err := registry.Execute(ctx, strings.TrimSpace(line)); errors.Is(err, client.ErrExit) {
			break
		}
	}
}
