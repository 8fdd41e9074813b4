package models

import "time"

// Supported board side lengths.
const (
	GridSmall  = 4
	GridMedium = 6
	GridLarge  = 8
)

// ValidGridSize reports whether size is a playable board side length.
func ValidGridSize(size int) bool {
	return size == GridSmall || size == GridMedium || size == GridLarge
}

// Score records a single game session. A row is created the moment a game
// starts, with zeroed metrics, and overwritten exactly once on completion.
// TimeSeconds == 0 marks the session as incomplete/abandoned and keeps it
// out of leaderboard reads — there is no separate status column.
type Score struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	GridSize       int       `json:"grid_size" gorm:"not null"`
	TimeSeconds    int       `json:"time_seconds" gorm:"default:0"`
	Moves          int       `json:"moves" gorm:"default:0"`
	CompletionDate time.Time `json:"completion_date" gorm:"autoCreateTime"`
}

// LeaderboardEntry is one ranked row returned to clients, joined with the
// player's username.
type LeaderboardEntry struct {
	PlayerName     string    `json:"player_name"`
	TimeSeconds    int       `json:"time_seconds"`
	Moves          int       `json:"moves"`
	CompletionDate time.Time `json:"completion_date"`
}
