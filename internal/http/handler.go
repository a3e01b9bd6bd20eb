package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"chessbot/internal/core"
	"chessbot/internal/service"
)

const rateLimitRate = 10 // req/sec

type Config struct {
	DevMode bool
	Logger  zerolog.Logger
}

type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, cfg Config) *fiber.App {
	h := NewHTTPHandler(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          service.WaitTimeout + 5*time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} ${method} ${path} ${latency}",
		Output: cfg.Logger.With().Str("component", "http").Logger(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if cfg.DevMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// X-Forwarded-For first, then the remote IP
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/legal", h.GetLegalMoves)

	return app
}

// Health check endpoint
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"games":   h.svc.GameCount(),
	})
}

// CreateGame creates a new game with specified player types
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	snap, err := h.svc.CreateGame(req.White, req.Black, req.Seed)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(gameResponse(snap))
}

// GetGame retrieves current game state. With wait=true it long-polls until
// the move count differs from moveCount or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	if c.QueryBool("wait") {
		ready, err := h.svc.WaitForChange(c.UserContext(), gameID, c.QueryInt("moveCount", -1))
		if err != nil {
			return serviceError(c, err)
		}
		<-ready
	}

	snap, err := h.svc.GetGame(gameID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(gameResponse(snap))
}

// MakeMove submits a move; "cccc" asks the engine to move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	snap, err := h.svc.MakeMove(gameID, req.Move)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(gameResponse(snap))
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	snap, err := h.svc.UndoMoves(gameID, req.Count)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(gameResponse(snap))
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	if err := h.svc.DeleteGame(gameID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	snap, err := h.svc.GetGame(gameID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(core.BoardResponse{
		Placement: snap.Placement,
		Board:     snap.Board,
	})
}

// GetLegalMoves lists the legal moves of the side to move
func (h *HTTPHandler) GetLegalMoves(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}

	turn, moves, err := h.svc.LegalMoves(gameID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(core.LegalMovesResponse{
		Turn:  turn.String(),
		Moves: moves,
	})
}

func gameResponse(snap service.Snapshot) core.GameResponse {
	white, black := snap.White, snap.Black
	resp := core.GameResponse{
		GameID:    snap.ID,
		Placement: snap.Placement,
		Turn:      snap.Turn.String(),
		State:     snap.State.String(),
		Moves:     snap.Moves,
		Players: core.PlayersResponse{
			White: &white,
			Black: &black,
		},
	}
	if last := snap.LastMove; last != nil {
		info := &core.MoveInfo{
			Move:        last.Move,
			PlayerColor: last.Color.String(),
		}
		if last.Computer {
			info.Score = last.Score
			info.Depth = last.Depth
		}
		resp.LastMove = info
	}
	return resp
}
