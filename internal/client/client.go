// Package client talks to the chess HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessbot/internal/core"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status   int
	Response core.ErrorResponse
}

func (e *APIError) Error() string {
	r := e.Response
	if r.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, r.Code, r.Error, r.Details)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, r.Code, r.Error)
}

// Code returns the server's error code, empty if err is not an APIError.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Response.Code
	}
	return ""
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
	Games   int    `json:"games"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Trace      io.Writer // request/response lines when set
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// above the server's long-poll window
			Timeout: 40 * time.Second,
		},
	}
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
		c.tracef("[API] %s %s %s\n", method, path, data)
	} else {
		c.tracef("[API] %s %s\n", method, path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.tracef("[%d %s]\n", resp.StatusCode, http.StatusText(resp.StatusCode))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Response); err != nil {
			apiErr.Response.Error = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) tracef(format string, args ...any) {
	if c.Trace != nil {
		fmt.Fprintf(c.Trace, format, args...)
	}
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(ctx context.Context, req *core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/games/"+gameID, nil, &resp)
	return &resp, err
}

// WaitForMove long-polls until the game's move count differs from moveCount
// or the server's wait window ends.
func (c *Client) WaitForMove(ctx context.Context, gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("/api/v1/games/%s?wait=true&moveCount=%d", gameID, moveCount)
	err := c.doRequest(ctx, http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/games/"+gameID, nil, nil)
}

// MakeMove submits move; "cccc" asks the server's engine to move.
func (c *Client) MakeMove(ctx context.Context, gameID, move string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/moves", &core.MoveRequest{Move: move}, &resp)
	return &resp, err
}

func (c *Client) UndoMoves(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/undo", &core.UndoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) GetBoard(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/games/"+gameID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(ctx context.Context, gameID string) (*core.LegalMovesResponse, error) {
	var resp core.LegalMovesResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/games/"+gameID+"/legal", nil, &resp)
	return &resp, err
}
