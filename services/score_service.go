package services

import (
	"errors"
	"log"

	"memory-match-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ScoreService struct {
	DB *gorm.DB
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{DB: db}
}

type initScoreRequest struct {
	UserID   uint `json:"userId"`
	GridSize int  `json:"gridSize"`
}

// finalizeScoreRequest uses pointers so "absent" and "zero" stay
// distinguishable; a present zero is accepted.
type finalizeScoreRequest struct {
	TimeSeconds *int `json:"timeSeconds"`
	Moves       *int `json:"moves"`
}

// InitScore inserts a placeholder score row for a game that is starting.
// The session identity set by the middleware is authoritative: a body
// claiming a different user id is rejected, not trusted.
func (s *ScoreService) InitScore(c *fiber.Ctx) error {
	var req initScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if req.UserID == 0 || req.GridSize == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields: userId and gridSize."})
	}
	if sessUserID, ok := c.Locals("user_id").(uint); ok && sessUserID != req.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Score cannot be created for another user."})
	}

	score, err := s.createPlaceholder(req.UserID, req.GridSize)
	if err != nil {
		log.Printf("[Score] placeholder insert failed (user=%d grid=%d): %v", req.UserID, req.GridSize, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create placeholder score."})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"scoreId": score.ID})
}

// UpdateScore overwrites the metrics of the placeholder row created by
// InitScore. The completion date was set at insertion and is not touched.
func (s *ScoreService) UpdateScore(c *fiber.Ctx) error {
	scoreID, err := c.ParamsInt("scoreId")
	if err != nil || scoreID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid score ID."})
	}

	var req finalizeScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if req.TimeSeconds == nil || req.Moves == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields: timeSeconds and moves."})
	}

	rowsAffected, err := s.finalize(uint(scoreID), *req.TimeSeconds, *req.Moves)
	if err != nil {
		if errors.Is(err, ErrScoreNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrScoreNotFound.Error()})
		}
		log.Printf("[Score] finalize failed (score=%d): %v", scoreID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update score."})
	}

	return c.JSON(fiber.Map{"rowsAffected": rowsAffected})
}

// GetLeaderboard returns the ranked completed scores for one grid size.
func (s *ScoreService) GetLeaderboard(c *fiber.Ctx) error {
	gridSize, err := c.ParamsInt("gridSize")
	if err != nil || !models.ValidGridSize(gridSize) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidGridSize.Error()})
	}

	entries, err := s.topScores(gridSize, 10)
	if err != nil {
		log.Printf("[Score] leaderboard read failed (grid=%d): %v", gridSize, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch leaderboard."})
	}

	return c.JSON(entries)
}

func (s *ScoreService) createPlaceholder(userID uint, gridSize int) (*models.Score, error) {
	score := &models.Score{UserID: userID, GridSize: gridSize}
	if err := s.DB.Create(score).Error; err != nil {
		return nil, err
	}
	return score, nil
}

// finalize uses a column map so GORM only writes the two metric fields.
func (s *ScoreService) finalize(scoreID uint, timeSeconds, moves int) (int64, error) {
	res := s.DB.Model(&models.Score{}).Where("id = ?", scoreID).Updates(map[string]interface{}{
		"time_seconds": timeSeconds,
		"moves":        moves,
	})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrScoreNotFound
	}
	return res.RowsAffected, nil
}

// topScores ranks completed sessions: faster time wins, fewer moves breaks
// ties. Placeholder rows (time_seconds = 0) never appear.
func (s *ScoreService) topScores(gridSize, limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0, limit)
	err := s.DB.Model(&models.Score{}).
		Select("users.username AS player_name, scores.time_seconds, scores.moves, scores.completion_date").
		Joins("JOIN users ON users.id = scores.user_id").
		Where("scores.grid_size = ? AND scores.time_seconds > 0", gridSize).
		Order("scores.time_seconds ASC, scores.moves ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
