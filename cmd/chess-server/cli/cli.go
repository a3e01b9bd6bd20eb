// Package cli implements the database administration subcommands of chess-server.
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"chessbot/internal/core"
	"chessbot/internal/storage"
)

// Run is the entry point for the db subcommands. Output goes to out.
func Run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out, os.Stdin)
	case "query":
		return runQuery(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	return storage.NewStore(path, false, zerolog.Nop())
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string, out io.Writer, in *os.File) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")
	force := fs.Bool("force", false, "Delete without confirmation")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*force {
		// only a person at a terminal can confirm
		if in == nil || !term.IsTerminal(int(in.Fd())) {
			return fmt.Errorf("refusing to delete without -force when stdin is not a terminal")
		}
		fmt.Fprintf(out, "Delete database %s? [y/N]: ", *path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	store, err := openStore(*path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "List the moves of each game found")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tSeed\tState\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			short(g.GameID)+"...",
			playerInfo(g.WhitePlayerID, g.WhiteType, g.WhiteDepth),
			playerInfo(g.BlackPlayerID, g.BlackType, g.BlackDepth),
			g.Seed,
			g.State,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *moves {
		for _, g := range games {
			records, err := store.QueryMoves(g.GameID)
			if err != nil {
				return fmt.Errorf("query moves failed: %w", err)
			}
			fmt.Fprintf(out, "\n%s (%s)\n", g.GameID, g.InitialPlacement)
			for _, m := range records {
				fmt.Fprintf(out, "%3d. %s %s  %s\n", m.MoveNumber, m.PlayerColor, m.Move, m.PlacementAfter)
			}
		}
	}

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func playerInfo(id string, playerType, depth int) string {
	if core.PlayerType(playerType) == core.PlayerComputer {
		return fmt.Sprintf("%s (computer d%d)", short(id), depth)
	}
	return fmt.Sprintf("%s (human)", short(id))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
