package handlers

import (
	"memory-match-system/middleware"
	"memory-match-system/services"
	"memory-match-system/session"

	"github.com/gofiber/fiber/v2"
)

func SetupScoreRoutes(app *fiber.App, scoreService *services.ScoreService, sessions *session.Manager) {
	// 🔓 Public read
	app.Get("/api/leaderboard/:gridSize", scoreService.GetLeaderboard)

	// 🔐 Score mutations require a live session
	secured := app.Group("/api/score", middleware.SessionMiddleware(sessions))
	secured.Post("/init", scoreService.InitScore)
	secured.Put("/:scoreId", scoreService.UpdateScore)
}
