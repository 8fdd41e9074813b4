package services

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memory-match-system/middleware"
	"memory-match-system/session"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
)

// newValidationApp mounts the real route layout with no database behind the
// services. Requests rejected by validation never touch the store; requests
// that pass it panic on the nil DB, which the recover middleware reports as
// a 500. A 400 therefore proves rejection and a 500 proves acceptance.
func newValidationApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	sessions := session.NewManager(session.NewMemoryStore(), clockwork.NewFakeClock(), time.Hour)
	sess, err := sessions.Issue(context.Background(), 1, "alice")
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Use(fiberrecover.New())

	authService := NewAuthService(nil, sessions)
	scoreService := NewScoreService(nil)

	app.Post("/api/auth/register", authService.Register)
	app.Post("/api/auth/login", authService.Login)
	app.Get("/api/leaderboard/:gridSize", scoreService.GetLeaderboard)

	secured := app.Group("/api/score", middleware.SessionMiddleware(sessions))
	secured.Post("/init", scoreService.InitScore)
	secured.Put("/:scoreId", scoreService.UpdateScore)

	return app, sess.Token
}

func TestHandlerValidation(t *testing.T) {
	app, token := newValidationApp(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		withToken  bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "register missing password",
			method:     fiber.MethodPost,
			path:       "/api/auth/register",
			body:       `{"username":"alice"}`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Username and password are required.",
		},
		{
			name:       "register missing username",
			method:     fiber.MethodPost,
			path:       "/api/auth/register",
			body:       `{"password":"pw"}`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Username and password are required.",
		},
		{
			name:       "register malformed body",
			method:     fiber.MethodPost,
			path:       "/api/auth/register",
			body:       `{"username":`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Invalid request body.",
		},
		{
			name:       "login missing fields",
			method:     fiber.MethodPost,
			path:       "/api/auth/login",
			body:       `{}`,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Username and password are required.",
		},
		{
			name:       "init without session",
			method:     fiber.MethodPost,
			path:       "/api/score/init",
			body:       `{"userId":1,"gridSize":4}`,
			wantStatus: fiber.StatusUnauthorized,
			wantError:  "Missing session token.",
		},
		{
			name:       "finalize without session",
			method:     fiber.MethodPut,
			path:       "/api/score/5",
			body:       `{"timeSeconds":42,"moves":10}`,
			wantStatus: fiber.StatusUnauthorized,
			wantError:  "Missing session token.",
		},
		{
			name:       "init missing userId",
			method:     fiber.MethodPost,
			path:       "/api/score/init",
			body:       `{"gridSize":4}`,
			withToken:  true,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Missing required fields: userId and gridSize.",
		},
		{
			name:       "init missing gridSize",
			method:     fiber.MethodPost,
			path:       "/api/score/init",
			body:       `{"userId":1}`,
			withToken:  true,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Missing required fields: userId and gridSize.",
		},
		{
			name:       "init for another user rejected",
			method:     fiber.MethodPost,
			path:       "/api/score/init",
			body:       `{"userId":2,"gridSize":4}`,
			withToken:  true,
			wantStatus: fiber.StatusForbidden,
			wantError:  "Score cannot be created for another user.",
		},
		{
			name:       "init for the session user passes validation",
			method:     fiber.MethodPost,
			path:       "/api/score/init",
			body:       `{"userId":1,"gridSize":4}`,
			withToken:  true,
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "finalize non-numeric score id",
			method:     fiber.MethodPut,
			path:       "/api/score/abc",
			body:       `{"timeSeconds":42,"moves":10}`,
			withToken:  true,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Invalid score ID.",
		},
		{
			name:       "finalize missing timeSeconds",
			method:     fiber.MethodPut,
			path:       "/api/score/5",
			body:       `{"moves":10}`,
			withToken:  true,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Missing required fields: timeSeconds and moves.",
		},
		{
			name:       "finalize missing moves",
			method:     fiber.MethodPut,
			path:       "/api/score/5",
			body:       `{"timeSeconds":42}`,
			withToken:  true,
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Missing required fields: timeSeconds and moves.",
		},
		{
			// Present-but-zero metrics are not "missing"; they must clear
			// validation and reach the store.
			name:       "finalize zero metrics accepted",
			method:     fiber.MethodPut,
			path:       "/api/score/5",
			body:       `{"timeSeconds":0,"moves":0}`,
			withToken:  true,
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "leaderboard unsupported size",
			method:     fiber.MethodGet,
			path:       "/api/leaderboard/5",
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Invalid grid size.",
		},
		{
			name:       "leaderboard non-numeric size",
			method:     fiber.MethodGet,
			path:       "/api/leaderboard/huge",
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Invalid grid size.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.withToken {
				req.Header.Set(session.HeaderName, token)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantError == "" {
				return
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}
