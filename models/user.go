package models

import (
	"time"
)

// User is the local account record. Credentials are bcrypt-hashed and never
// serialized back to the client.
type User struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"uniqueIndex;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"not null"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Bio            string     `json:"bio"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
}

// Session backs the session_id cookie. The row id *is* the cookie value.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
