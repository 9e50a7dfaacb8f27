package models

import (
	"time"
)

// Post types.
const (
	PostGeneral          = "general"
	PostAchievement      = "achievement"
	PostTournamentUpdate = "tournament_update"
)

func ValidPostType(t string) bool {
	return t == PostGeneral || t == PostAchievement || t == PostTournamentUpdate
}

// Post is a social feed entry. LikesCount and CommentsCount are denormalized
// and always rewritten from COUNT(*) inside the mutating transaction.
type Post struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;index"`
	TournamentID  *string   `json:"tournament_id,omitempty" gorm:"index"`
	Content       string    `json:"content" gorm:"not null"`
	ImageURL      string    `json:"image_url,omitempty"`
	PostType      string    `json:"post_type" gorm:"default:'general'"`
	LikesCount    int64     `json:"likes_count" gorm:"default:0"`
	CommentsCount int64     `json:"comments_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Post) TableName() string { return "social_posts" }

// PostLike is one user's like on one post.
type PostLike struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"not null;index;uniqueIndex:idx_post_user_like"`
	UserID    string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (PostLike) TableName() string { return "post_likes" }

type Comment struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	PostID          string     `json:"post_id" gorm:"not null;index"`
	UserID          string     `json:"user_id" gorm:"not null;index"`
	Content         string     `json:"content" gorm:"not null"`
	ParentCommentID *string    `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
}
