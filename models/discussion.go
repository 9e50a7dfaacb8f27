package models

import (
	"time"
)

// Discussion is a thread attached to a tournament. Titles are unique per
// tournament. RepliesCount is denormalized and recomputed from COUNT(*) after
// every reply mutation, never incremented in place.
type Discussion struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index;uniqueIndex:idx_tournament_title"`
	CreatorID    string    `json:"creator_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"not null;uniqueIndex:idx_tournament_title"`
	Description  string    `json:"description"`
	IsPinned     bool      `json:"is_pinned" gorm:"default:false"`
	RepliesCount int64     `json:"replies_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Discussion) TableName() string { return "tournament_discussions" }

type Reply struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	DiscussionID string     `json:"discussion_id" gorm:"not null;index"`
	UserID       string     `json:"user_id" gorm:"not null;index"`
	Content      string     `json:"content" gorm:"not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
}

func (Reply) TableName() string { return "discussion_replies" }
