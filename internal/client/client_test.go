package client

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chessbot/internal/core"
	chesshttp "chessbot/internal/http"
	"chessbot/internal/service"
	"chessbot/internal/testutil"
)

// startServer serves a fresh API on a loopback port and returns its base URL.
func startServer(t *testing.T) string {
	t.Helper()
	svc := service.New(nil, zerolog.Nop())
	app := chesshttp.NewFiberApp(svc, chesshttp.Config{DevMode: true, Logger: zerolog.Nop()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testutil.AssertNoError(t, err)
	go app.Listener(ln)

	t.Cleanup(func() {
		svc.Close()
		app.Shutdown()
	})
	return "http://" + ln.Addr().String()
}

func TestClientErrors(t *testing.T) {
	c := New(startServer(t))
	ctx := context.Background()

	h, err := c.Health(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, h.Status, "healthy")

	_, err = c.GetGame(ctx, uuid.New().String())
	testutil.AssertEqual(t, Code(err), core.ErrGameNotFound)

	_, err = c.GetGame(ctx, "not-a-uuid")
	testutil.AssertEqual(t, Code(err), core.ErrInvalidRequest)

	depth := 7
	_, err = c.CreateGame(ctx, &core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerComputer, Depth: &depth},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
	})
	var apiErr *APIError
	testutil.AssertTrue(t, errors.As(err, &apiErr), "CreateGame error %v is an APIError", err)
	testutil.AssertEqual(t, apiErr.Status, 400)
	testutil.AssertTrue(t, strings.Contains(apiErr.Error(), "Depth"), "error %q names the field", apiErr.Error())

	testutil.AssertEqual(t, Code(nil), "")
}

func TestClientGameFlow(t *testing.T) {
	c := New(startServer(t))
	ctx := context.Background()

	game, err := c.CreateGame(ctx, &core.CreateGameRequest{
		White: core.PlayerConfig{Type: core.PlayerHuman},
		Black: core.PlayerConfig{Type: core.PlayerHuman},
	})
	testutil.AssertNoError(t, err)

	game, err = c.MakeMove(ctx, game.GameID, "e2e4")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, game.Moves, []string{"e2e4"})

	_, err = c.MakeMove(ctx, game.GameID, "e2e4")
	testutil.AssertEqual(t, Code(err), core.ErrInvalidMove)

	b, err := c.GetBoard(ctx, game.GameID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, b.Placement, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR")

	legal, err := c.LegalMoves(ctx, game.GameID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, legal.Turn, "b")
	testutil.AssertEqual(t, len(legal.Moves), 20)

	game, err = c.UndoMoves(ctx, game.GameID, 1)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, game.Moves, []string{})

	testutil.AssertNoError(t, c.DeleteGame(ctx, game.GameID))
	_, err = c.GetGame(ctx, game.GameID)
	testutil.AssertEqual(t, Code(err), core.ErrGameNotFound)
}

func TestRegistrySession(t *testing.T) {
	var out bytes.Buffer
	r := NewRegistry(New(startServer(t)), &out)
	ctx := context.Background()

	run := func(line string) string {
		t.Helper()
		out.Reset()
		if err := r.Execute(ctx, line); err != nil {
			t.Fatalf("Execute(%q) error: %v", line, err)
		}
		return out.String()
	}
	contains := func(text, want string) {
		t.Helper()
		testutil.AssertTrue(t, strings.Contains(text, want), "output %q contains %q", text, want)
	}

	contains(run("m e2e4"), "no current game")
	contains(run("new h c1 5"), "Game created")
	testutil.AssertTrue(t, r.GameID() != "", "current game set")
	contains(r.Prompt(), "White to move")

	contains(run("legal"), "White (20)")
	contains(run("m e2 e4"), "White played e2e4")
	contains(run("c"), "Black played")
	contains(run("c"), core.ErrNotComputerTurn)
	contains(run("m e2e4"), core.ErrInvalidMove)
	contains(run("undo 2"), "2 move(s) undone")
	contains(run("state"), `"gameId"`)
	contains(run("new x"), "invalid player")
	contains(run("bogus"), "Unknown command")
	contains(run("help"), "Available Commands")
	contains(run("help undo"), "Usage: undo [count]")
	contains(run("delete"), "deleted")
	testutil.AssertEqual(t, r.GameID(), "")

	testutil.AssertErrorIs(t, r.Execute(ctx, "x"), ErrExit)
}

func TestRegistryPoll(t *testing.T) {
	base := startServer(t)
	var out bytes.Buffer
	r := NewRegistry(New(base), &out)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	testutil.AssertNoError(t, r.Execute(ctx, "new h h"))
	id := r.GameID()

	go func() {
		time.Sleep(100 * time.Millisecond)
		if _, err := New(base).MakeMove(ctx, id, "d2d4"); err != nil {
			t.Errorf("MakeMove() error: %v", err)
		}
	}()

	out.Reset()
	testutil.AssertNoError(t, r.Execute(ctx, "poll"))
	testutil.AssertTrue(t, strings.Contains(out.String(), "White played d2d4"), "poll output %q", out.String())
}

func TestParsePlayer(t *testing.T) {
	tests := []struct {
		in      string
		typ     core.PlayerType
		depth   int // -1 for unset
		wantErr bool
	}{
		{"h", core.PlayerHuman, -1, false},
		{"c", core.PlayerComputer, -1, false},
		{"C3", core.PlayerComputer, 3, false},
		{"cx", 0, 0, true},
		{"robot", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pc, err := parsePlayer(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePlayer(%q) error = nil, want error", tt.in)
				}
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, pc.Type, tt.typ)
			if tt.depth < 0 {
				testutil.AssertTrue(t, pc.Depth == nil, "depth unset")
			} else {
				testutil.AssertEqual(t, *pc.Depth, tt.depth)
			}
		})
	}
}
