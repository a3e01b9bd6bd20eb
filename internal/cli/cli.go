package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/engine"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandType int

const (
	CmdNone CommandType = iota
	CmdMove
	CmdUndo
	CmdMoves
	CmdHistory
	CmdBoard
	CmdTheme
	CmdHelp
	CmdQuit
)

type Command struct {
	Type  CommandType
	Move  board.Move
	Count int // CmdUndo
	Args  []string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// ParseCommand reads one input line. Anything that is not a keyword is
// taken as a move in "e2 e4" or "e2e4" form.
func ParseCommand(input string) (Command, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return Command{Type: CmdNone}, nil
	}

	args := parts[1:]
	switch strings.ToLower(parts[0]) {
	case "undo", "u":
		count := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return Command{}, fmt.Errorf("invalid undo count %q", args[0])
			}
			count = n
		}
		return Command{Type: CmdUndo, Count: count}, nil
	case "moves", "legal":
		return Command{Type: CmdMoves}, nil
	case "history":
		return Command{Type: CmdHistory}, nil
	case "board", "b":
		return Command{Type: CmdBoard}, nil
	case "theme", "color":
		if len(args) != 1 {
			return Command{}, errors.New("usage: theme <off|brown|green|gray>")
		}
		return Command{Type: CmdTheme, Args: args}, nil
	case "help", "?":
		return Command{Type: CmdHelp}, nil
	case "quit", "exit", "q":
		return Command{Type: CmdQuit}, nil
	}

	m, err := board.ParseMove(input)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(input))
	}
	return Command{Type: CmdMove, Move: m}, nil
}

// CLI renders games to a terminal.
type CLI struct {
	output io.Writer
	theme  ColorTheme
}

func New(output io.Writer) *CLI {
	return &CLI{
		output: output,
		theme:  ThemeOff,
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme {
	return c.theme
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// DisplayBoard prints the board rank 8 first. With the theme off the output
// is the plain ASCII rendering.
func (c *CLI) DisplayBoard(b *board.Board) {
	if c.theme == ThemeOff {
		c.ShowMessage(b.ToASCII())
		return
	}

	theme := themes[c.theme]
	var sb strings.Builder
	for r := 0; r < board.Size; r++ {
		sb.WriteString(fmt.Sprintf("%d ", board.Size-r))
		for col := 0; col < board.Size; col++ {
			bg := theme.darkBg
			if (r+col)%2 == 0 {
				bg = theme.lightBg
			}

			p := b.At(board.MustSquare(r, col))
			if p.IsEmpty() {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if p.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, p.Glyph(), theme.reset))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  <from> <to>      - Make a move (e.g., e2 e4 or e2e4)
  undo [count]     - Take back your last move(s) and the replies, default 1
  moves            - List the legal moves
  history          - Show the moves played so far
  board            - Show the board
  theme <name>     - Set board color theme (off|brown|green|gray)
  quit/exit        - Exit the program
  help/?           - Show this help message

Castle by moving the king onto its own rook (e1 h1).`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome(depth int) {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage(fmt.Sprintf("You play White. The computer plays Black at depth %d.", depth))
	c.ShowMessage("Type 'help' for commands.")
	c.ShowMessage("")
}

func (c *CLI) ShowLegalMoves(moves []board.Move) {
	if len(moves) == 0 {
		c.ShowMessage("No legal moves")
		return
	}
	c.ShowMessage(fmt.Sprintf("Legal moves (%d): %s", len(moves), joinMoves(moves)))
}

func (c *CLI) ShowGameHistory(moves []board.Move) {
	if len(moves) == 0 {
		c.ShowMessage("No moves yet")
		return
	}
	for i := 0; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", i/2+1, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", i/2+1, moves[i]))
		}
	}
}

func (c *CLI) ShowComputerMove(color core.Color, res engine.SearchResult) {
	c.ShowMessage(fmt.Sprintf("Computer (%s): %s (depth=%d, score=%d, nodes=%d)",
		color.Name(), res.BestMove, res.Depth, res.Score, res.Nodes))
}

func (c *CLI) ShowGameOver(state core.State) {
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
}

func joinMoves(moves []board.Move) string {
	s := make([]string, len(moves))
	for i, m := range moves {
		s[i] = m.String()
	}
	return strings.Join(s, " ")
}
