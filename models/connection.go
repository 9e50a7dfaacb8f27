package models

import (
	"time"
)

// Connection approval states.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionBlocked  = "blocked"
)

// ValidConnectionType reports whether t is one of the three approval states.
func ValidConnectionType(t string) bool {
	return t == ConnectionPending || t == ConnectionAccepted || t == ConnectionBlocked
}

// Connection is a directed follow edge between two users. The composite
// unique index on (follower_id, following_id) is the authoritative guard
// against duplicate edges; the service's pre-insert check is an optimization.
// Mutual following is two rows, one per direction; accepting a request never
// creates the reverse edge.
type Connection struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	FollowerID     string    `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	FollowingID    string    `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	ConnectionType string    `json:"connection_type" gorm:"not null;default:'pending'"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Connection) TableName() string { return "user_connections" }
