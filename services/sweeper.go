package services

import (
	"log"
	"time"

	"memory-match-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartPlaceholderSweeper prunes abandoned sessions: score rows still holding
// zeroed metrics a day after creation. The leaderboard already filters them
// out, so this is table hygiene only. The cutoff is far beyond any real game
// length; a session somehow still open past it loses its placeholder and its
// finalize reports 404.
func (s *ScoreService) StartPlaceholderSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-24 * time.Hour)
			res := s.DB.Where("time_seconds = 0 AND completion_date < ?", cutoff).
				Delete(&models.Score{})
			if res.Error != nil {
				log.Printf("[Sweeper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Swept %d abandoned placeholder scores", res.RowsAffected)
			}
		}),
	)
}
