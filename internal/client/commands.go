package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"chessbot/internal/core"
)

// Terminal color codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

// ErrExit is returned by Execute for the exit command.
var ErrExit = errors.New("exit")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(ctx context.Context, args []string) error
}

// Registry holds the client session and the commands that act on it.
type Registry struct {
	Client *Client
	Out    io.Writer
	Color  bool

	gameID    string
	last      *core.GameResponse
	commands  map[string]*Command
	listOrder []string
}

func NewRegistry(c *Client, out io.Writer) *Registry {
	r := &Registry{
		Client:   c,
		Out:      out,
		commands: make(map[string]*Command),
	}
	r.registerGameCommands()
	r.registerUtilCommands()
	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.listOrder = append(r.listOrder, cmd.Name)
}

// GameID is the current game, empty before new or join.
func (r *Registry) GameID() string {
	return r.gameID
}

// Execute runs one input line. It returns ErrExit for the exit command;
// command failures are printed, not returned.
func (r *Registry) Execute(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, ok := r.commands[parts[0]]
	if !ok {
		r.printf(red, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(r.Out, "Type 'help' for available commands")
		return nil
	}

	err := cmd.Handler(ctx, parts[1:])
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		r.printf(red, "Error: %v\n", err)
	}
	return nil
}

// Prompt describes the current game for the input line.
func (r *Registry) Prompt() string {
	if r.gameID == "" {
		return r.paint(yellow, "chess > ")
	}
	p := "chess [" + short(r.gameID) + "]"
	if r.last != nil {
		p += fmt.Sprintf(" %s to move", r.turnName(r.last.Turn))
	}
	return r.paint(yellow, p+" > ")
}

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game",
		Usage:       "new [white h|c<depth>] [black h|c<depth>] [seed]",
		Handler:     r.newGame,
	})
	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Set the current game ID",
		Usage:       "join <gameId>",
		Handler:     r.join,
	})
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <from><to>",
		Handler:     r.move,
	})
	r.Register(&Command{
		Name:        "computer",
		ShortName:   "c",
		Description: "Trigger computer move",
		Usage:       "computer",
		Handler: func(ctx context.Context, _ []string) error {
			return r.move(ctx, []string{"cccc"})
		},
	})
	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Undo moves",
		Usage:       "undo [count]",
		Handler:     r.undo,
	})
	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     r.show,
	})
	r.Register(&Command{
		Name:        "legal",
		ShortName:   "l",
		Description: "List legal moves",
		Usage:       "legal",
		Handler:     r.legal,
	})
	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     r.state,
	})
	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for the next move",
		Usage:       "poll",
		Handler:     r.poll,
	})
	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     r.deleteGame,
	})
}

func (r *Registry) registerUtilCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler: func(ctx context.Context, _ []string) error {
			h, err := r.Client.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.Out, "status=%s storage=%s games=%d\n", h.Status, h.Storage, h.Games)
			return nil
		},
	})
	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the API base URL",
		Usage:       "url [base]",
		Handler: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				r.Client.SetBaseURL(args[0])
			}
			fmt.Fprintf(r.Out, "API: %s\n", r.Client.BaseURL)
			return nil
		},
	})
	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.help,
	})
	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler: func(context.Context, []string) error {
			return ErrExit
		},
	})
}

// parsePlayer reads "h" or "c<depth>"; a bare "c" takes the server default depth.
func parsePlayer(s string) (core.PlayerConfig, error) {
	s = strings.ToLower(s)
	switch {
	case s == "h":
		return core.PlayerConfig{Type: core.PlayerHuman}, nil
	case s == "c":
		return core.PlayerConfig{Type: core.PlayerComputer}, nil
	case strings.HasPrefix(s, "c"):
		depth, err := strconv.Atoi(s[1:])
		if err != nil {
			return core.PlayerConfig{}, fmt.Errorf("invalid player %q: want h, c or c<depth>", s)
		}
		return core.PlayerConfig{Type: core.PlayerComputer, Depth: &depth}, nil
	}
	return core.PlayerConfig{}, fmt.Errorf("invalid player %q: want h, c or c<depth>", s)
}

func (r *Registry) newGame(ctx context.Context, args []string) error {
	req := &core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerComputer},
	}
	var err error
	if len(args) > 0 {
		if req.White, err = parsePlayer(args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if req.Black, err = parsePlayer(args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if req.Seed, err = strconv.ParseUint(args[2], 10, 64); err != nil {
			return fmt.Errorf("invalid seed %q", args[2])
		}
	}

	game, err := r.Client.CreateGame(ctx, req)
	if err != nil {
		return err
	}
	r.gameID = game.GameID
	r.last = game
	r.printf(green, "Game created: %s\n", game.GameID)
	return r.show(ctx, nil)
}

func (r *Registry) join(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: join <gameId>")
	}
	game, err := r.Client.GetGame(ctx, args[0])
	if err != nil {
		return err
	}
	r.gameID = game.GameID
	r.last = game
	r.printf(green, "Joined game %s\n", game.GameID)
	return nil
}

func (r *Registry) requireGame() error {
	if r.gameID == "" {
		return errors.New("no current game (use new or join)")
	}
	return nil
}

func (r *Registry) move(ctx context.Context, args []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: move <from><to>")
	}
	game, err := r.Client.MakeMove(ctx, r.gameID, strings.Join(args, ""))
	if err != nil {
		return err
	}
	r.last = game
	r.showMove(game)
	return nil
}

func (r *Registry) undo(ctx context.Context, args []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid undo count %q", args[0])
		}
		count = n
	}
	game, err := r.Client.UndoMoves(ctx, r.gameID, count)
	if err != nil {
		return err
	}
	r.last = game
	fmt.Fprintf(r.Out, "%d move(s) undone\n", count)
	return nil
}

func (r *Registry) show(ctx context.Context, _ []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	b, err := r.Client.GetBoard(ctx, r.gameID)
	if err != nil {
		return err
	}
	game, err := r.Client.GetGame(ctx, r.gameID)
	if err != nil {
		return err
	}
	r.last = game

	fmt.Fprintln(r.Out, r.renderBoard(b.Board))
	fmt.Fprintf(r.Out, "Turn: %s  State: %s  Moves: %d\n", r.turnName(game.Turn), game.State, len(game.Moves))
	return nil
}

func (r *Registry) legal(ctx context.Context, _ []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	legal, err := r.Client.LegalMoves(ctx, r.gameID)
	if err != nil {
		return err
	}
	moves := append([]string(nil), legal.Moves...)
	sort.Strings(moves)
	fmt.Fprintf(r.Out, "%s (%d): %s\n", r.turnName(legal.Turn), len(moves), strings.Join(moves, " "))
	return nil
}

func (r *Registry) state(ctx context.Context, _ []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	game, err := r.Client.GetGame(ctx, r.gameID)
	if err != nil {
		return err
	}
	r.last = game
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, string(data))
	return nil
}

func (r *Registry) poll(ctx context.Context, _ []string) error {
	if err := r.requireGame(); err != nil {
		return err
	}
	count := 0
	if r.last != nil {
		count = len(r.last.Moves)
	}
	r.printf(cyan, "Waiting for a move after %d...\n", count)
	game, err := r.Client.WaitForMove(ctx, r.gameID, count)
	if err != nil {
		return err
	}
	r.last = game
	if len(game.Moves) == count {
		fmt.Fprintln(r.Out, "No new move")
		return nil
	}
	r.showMove(game)
	return nil
}

func (r *Registry) deleteGame(ctx context.Context, args []string) error {
	id := r.gameID
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return errors.New("usage: delete [gameId]")
	}
	if err := r.Client.DeleteGame(ctx, id); err != nil {
		return err
	}
	if id == r.gameID {
		r.gameID, r.last = "", nil
	}
	r.printf(green, "Game %s deleted\n", id)
	return nil
}

func (r *Registry) help(_ context.Context, args []string) error {
	if len(args) > 0 {
		cmd, ok := r.commands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.Out, "%s - %s\nUsage: %s\n", cmd.Name, cmd.Description, cmd.Usage)
		return nil
	}

	fmt.Fprintln(r.Out, "Available Commands:")
	for _, name := range r.listOrder {
		cmd := r.commands[name]
		fmt.Fprintf(r.Out, "  [%s] %-10s %s\n", cmd.ShortName, cmd.Name, cmd.Description)
	}
	return nil
}

func (r *Registry) showMove(game *core.GameResponse) {
	if lm := game.LastMove; lm != nil {
		if lm.Depth > 0 {
			fmt.Fprintf(r.Out, "%s played %s (depth=%d, score=%d)\n", r.turnName(lm.PlayerColor), lm.Move, lm.Depth, lm.Score)
		} else {
			fmt.Fprintf(r.Out, "%s played %s\n", r.turnName(lm.PlayerColor), lm.Move)
		}
	}
	if game.State != core.StateOngoing.String() {
		r.printf(yellow, "Game over: %s\n", game.State)
	}
}

// renderBoard colors White pieces blue and Black pieces red.
func (r *Registry) renderBoard(ascii string) string {
	if !r.Color {
		return ascii
	}
	lines := strings.Split(ascii, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		var sb strings.Builder
		for j, ch := range line {
			switch {
			case j == 0:
				sb.WriteString(cyan + string(ch) + reset)
			case ch >= 'A' && ch <= 'Z':
				sb.WriteString(blue + string(ch) + reset)
			case ch >= 'a' && ch <= 'z':
				sb.WriteString(red + string(ch) + reset)
			default:
				sb.WriteRune(ch)
			}
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func (r *Registry) turnName(turn string) string {
	if turn == "w" {
		return r.paint(blue, "White")
	}
	return r.paint(red, "Black")
}

func (r *Registry) paint(color, s string) string {
	if !r.Color {
		return s
	}
	return color + s + reset
}

func (r *Registry) printf(color, format string, args ...any) {
	fmt.Fprint(r.Out, r.paint(color, fmt.Sprintf(format, args...)))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
