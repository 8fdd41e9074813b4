package models

import "time"

// User is a registered player. The password hash never leaves the server;
// the unique index on Username is the authoritative duplicate guard
// (the pre-check in the auth service is an optimization only).
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
