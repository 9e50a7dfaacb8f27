package models

import (
	"time"
)

// Tournament lifecycle states, advanced by the status sweeper.
const (
	TournamentUpcoming  = "upcoming"
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

type Tournament struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Slug            string    `json:"slug" gorm:"index"`
	Description     string    `json:"description"`
	GameType        string    `json:"game_type" gorm:"not null"`
	EntryFee        float64   `json:"entry_fee" gorm:"default:0"`
	PrizePool       float64   `json:"prize_pool" gorm:"default:0"`
	MaxParticipants int       `json:"max_participants" gorm:"not null"`
	StartDate       time.Time `json:"start_date" gorm:"not null;index"`
	EndDate         time.Time `json:"end_date"`
	Status          string    `json:"status" gorm:"default:'upcoming';index"`
	OrganizerID     string    `json:"organizer_id" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Participant statuses.
const (
	ParticipantRegistered = "registered"
	ParticipantConfirmed  = "confirmed"
	ParticipantEliminated = "eliminated"
)

// Participant links a user to a tournament roster. One row per (tournament,
// user) pair.
type Participant struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	TournamentID     string    `json:"tournament_id" gorm:"not null;index;uniqueIndex:idx_tournament_user"`
	UserID           string    `json:"user_id" gorm:"not null;index;uniqueIndex:idx_tournament_user"`
	TeamName         string    `json:"team_name"`
	RegistrationDate time.Time `json:"registration_date" gorm:"autoCreateTime"`
	Status           string    `json:"status" gorm:"default:'registered'"`
	Placement        int       `json:"placement,omitempty"`
	Score            float64   `json:"score,omitempty"`
}

func (Participant) TableName() string { return "tournament_participants" }
