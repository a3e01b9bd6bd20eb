package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/service"
	"chessbot/internal/testutil"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil, zerolog.Nop())
	t.Cleanup(func() { svc.Close() })
	return NewFiberApp(svc, Config{DevMode: true, Logger: zerolog.Nop()})
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	testutil.AssertNoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", data, err)
	}
	return v
}

func createGame(t *testing.T, app *fiber.App, body string) core.GameResponse {
	t.Helper()
	status, data := do(t, app, fiber.MethodPost, "/api/v1/games", body)
	if status != fiber.StatusCreated {
		t.Fatalf("POST /games status = %d, want %d: %s", status, fiber.StatusCreated, data)
	}
	return decode[core.GameResponse](t, data)
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	status, data := do(t, app, fiber.MethodGet, "/health", "")
	testutil.AssertEqual(t, status, fiber.StatusOK)

	health := decode[map[string]any](t, data)
	testutil.AssertEqual(t, health["status"], "healthy")
	testutil.AssertEqual(t, health["storage"], "disabled")
}

func TestCreateGame(t *testing.T) {
	app := newApp(t)
	game := createGame(t, app, `{"white":{"type":1},"black":{"type":2,"depth":1},"seed":3}`)

	testutil.AssertTrue(t, isValidUUID(game.GameID), "game ID %q", game.GameID)
	testutil.AssertEqual(t, game.Placement, board.StartingPlacement)
	testutil.AssertEqual(t, game.Turn, "w")
	testutil.AssertEqual(t, game.State, "ongoing")
	testutil.AssertEqual(t, game.Moves, []string{})
	testutil.AssertEqual(t, game.Players.Black.Type, core.PlayerComputer)
	testutil.AssertEqual(t, game.Players.Black.Depth, 1)
	testutil.AssertEqual(t, game.Players.White.Color, core.ColorWhite)
}

func TestCreateGameValidation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		status      int
		code        string
	}{
		{"missing players", `{}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad player type", `{"white":{"type":3},"black":{"type":1}}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"depth too deep", `{"white":{"type":2,"depth":9},"black":{"type":1}}`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"malformed json", `{"white":`, "application/json", fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"wrong content type", `white=1`, "application/x-www-form-urlencoded", fiber.StatusUnsupportedMediaType, core.ErrInvalidContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(t)
			req := httptest.NewRequest(fiber.MethodPost, "/api/v1/games", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			resp, err := app.Test(req, -1)
			testutil.AssertNoError(t, err)
			defer resp.Body.Close()

			testutil.AssertEqual(t, resp.StatusCode, tt.status)
			data, _ := io.ReadAll(resp.Body)
			testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, tt.code)
		})
	}
}

func TestMoveFlow(t *testing.T) {
	app := newApp(t)
	game := createGame(t, app, `{"white":{"type":1},"black":{"type":2,"depth":1},"seed":11}`)
	base := "/api/v1/games/" + game.GameID

	status, data := do(t, app, fiber.MethodPost, base+"/moves", `{"move":"e2e4"}`)
	testutil.AssertEqual(t, status, fiber.StatusOK, "%s", data)
	game = decode[core.GameResponse](t, data)
	testutil.AssertEqual(t, game.Moves, []string{"e2e4"})
	testutil.AssertEqual(t, game.Turn, "b")

	// human move on the computer's turn
	status, data = do(t, app, fiber.MethodPost, base+"/moves", `{"move":"e7e5"}`)
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrNotHumanTurn)

	status, data = do(t, app, fiber.MethodPost, base+"/moves", `{"move":"cccc"}`)
	testutil.AssertEqual(t, status, fiber.StatusOK, "%s", data)
	game = decode[core.GameResponse](t, data)
	testutil.AssertEqual(t, len(game.Moves), 2)
	if game.LastMove == nil || game.LastMove.PlayerColor != "b" || game.LastMove.Depth != 1 {
		t.Fatalf("lastMove = %+v, want a depth 1 move by b", game.LastMove)
	}

	// computer move requested on the human's turn
	status, data = do(t, app, fiber.MethodPost, base+"/moves", `{"move":"cccc"}`)
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrNotComputerTurn)

	status, data = do(t, app, fiber.MethodPost, base+"/moves", `{"move":"a1a8"}`)
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrInvalidMove)

	status, data = do(t, app, fiber.MethodPost, base+"/moves", `{"move":"e2"}`)
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrInvalidRequest)

	status, data = do(t, app, fiber.MethodPost, base+"/undo", `{"count":2}`)
	testutil.AssertEqual(t, status, fiber.StatusOK, "%s", data)
	game = decode[core.GameResponse](t, data)
	testutil.AssertEqual(t, game.Moves, []string{})
	testutil.AssertEqual(t, game.Turn, "w")

	status, data = do(t, app, fiber.MethodPost, base+"/undo", `{"count":1}`)
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrInvalidRequest)
}

func TestBoardAndLegalMoves(t *testing.T) {
	app := newApp(t)
	game := createGame(t, app, `{"white":{"type":1},"black":{"type":1}}`)
	base := "/api/v1/games/" + game.GameID

	status, data := do(t, app, fiber.MethodGet, base+"/board", "")
	testutil.AssertEqual(t, status, fiber.StatusOK)
	b := decode[core.BoardResponse](t, data)
	testutil.AssertEqual(t, b.Placement, board.StartingPlacement)
	testutil.AssertTrue(t, strings.HasPrefix(b.Board, "8 r n b q k b n r"), "board %q", b.Board)

	status, data = do(t, app, fiber.MethodGet, base+"/legal", "")
	testutil.AssertEqual(t, status, fiber.StatusOK)
	legal := decode[core.LegalMovesResponse](t, data)
	testutil.AssertEqual(t, legal.Turn, "w")
	testutil.AssertEqual(t, len(legal.Moves), 20)
}

func TestGameNotFound(t *testing.T) {
	app := newApp(t)
	missing := "/api/v1/games/" + uuid.New().String()

	for _, tc := range []struct{ method, path, body string }{
		{fiber.MethodGet, missing, ""},
		{fiber.MethodGet, missing + "/board", ""},
		{fiber.MethodGet, missing + "/legal", ""},
		{fiber.MethodDelete, missing, ""},
		{fiber.MethodPost, missing + "/moves", `{"move":"e2e4"}`},
		{fiber.MethodPost, missing + "/undo", `{"count":1}`},
	} {
		status, data := do(t, app, tc.method, tc.path, tc.body)
		testutil.AssertEqual(t, status, fiber.StatusNotFound, "%s %s", tc.method, tc.path)
		testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrGameNotFound)
	}

	status, data := do(t, app, fiber.MethodGet, "/api/v1/games/not-a-uuid", "")
	testutil.AssertEqual(t, status, fiber.StatusBadRequest)
	testutil.AssertEqual(t, decode[core.ErrorResponse](t, data).Code, core.ErrInvalidRequest)
}

func TestDeleteGame(t *testing.T) {
	app := newApp(t)
	game := createGame(t, app, `{"white":{"type":1},"black":{"type":1}}`)
	path := "/api/v1/games/" + game.GameID

	status, _ := do(t, app, fiber.MethodDelete, path, "")
	testutil.AssertEqual(t, status, fiber.StatusNoContent)

	status, _ = do(t, app, fiber.MethodGet, path, "")
	testutil.AssertEqual(t, status, fiber.StatusNotFound)
}

func TestGetGameWaitReturnsOnStaleCount(t *testing.T) {
	app := newApp(t)
	game := createGame(t, app, `{"white":{"type":1},"black":{"type":1}}`)
	path := "/api/v1/games/" + game.GameID

	status, _ := do(t, app, fiber.MethodPost, path+"/moves", `{"move":"d2d4"}`)
	testutil.AssertEqual(t, status, fiber.StatusOK)

	status, data := do(t, app, fiber.MethodGet, path+"?wait=true&moveCount=0", "")
	testutil.AssertEqual(t, status, fiber.StatusOK)
	testutil.AssertEqual(t, decode[core.GameResponse](t, data).Moves, []string{"d2d4"})
}
