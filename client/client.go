// Package client talks to the memory-match backend: account auth, the
// two-phase score protocol and leaderboard reads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"memory-match-system/models"
	"memory-match-system/session"
)

// APIError carries the server's error string verbatim so callers can show
// it in place.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Identity is the client-held result of register/login: the two plain values
// older builds kept in local storage, plus the session token.
type Identity struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Register creates an account and returns the new identity.
func (c *Client) Register(ctx context.Context, username, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": username, "password": password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Login verifies credentials and returns the identity.
func (c *Client) Login(ctx context.Context, username, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": username, "password": password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout revokes the session token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// InitScore creates the placeholder score row for a starting game and
// returns its id. Gameplay must not begin without it.
func (c *Client) InitScore(ctx context.Context, token string, userID uint, gridSize int) (uint, error) {
	var resp struct {
		ScoreID uint `json:"scoreId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/score/init", token,
		map[string]interface{}{"userId": userID, "gridSize": gridSize}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.ScoreID, nil
}

// FinalizeScore overwrites the placeholder's metrics with the final result.
func (c *Client) FinalizeScore(ctx context.Context, token string, scoreID uint, timeSeconds, moves int) (int64, error) {
	var resp struct {
		RowsAffected int64 `json:"rowsAffected"`
	}
	path := fmt.Sprintf("/api/score/%d", scoreID)
	err := c.do(ctx, http.MethodPut, path, token,
		map[string]int{"timeSeconds": timeSeconds, "moves": moves}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.RowsAffected, nil
}

// Leaderboard fetches the ranked completed scores for one grid size.
func (c *Client) Leaderboard(ctx context.Context, gridSize int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	path := fmt.Sprintf("/api/leaderboard/%d", gridSize)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// do issues one request and decodes either the success body into out or the
// server's {"error": ...} body into an APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(session.HeaderName, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("request failed", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Error)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
