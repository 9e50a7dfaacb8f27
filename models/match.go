package models

import (
	"time"
)

// Match types.
const (
	MatchStandard  = "standard"
	MatchSemifinal = "semifinal"
	MatchFinal     = "final"
)

func ValidMatchType(t string) bool {
	return t == MatchStandard || t == MatchSemifinal || t == MatchFinal
}

// MatchResult records a reported match. WinnerName is derived at write time:
// team1 wins on score_team1 >= score_team2, so ties deliberately favor the
// first-listed team.
type MatchResult struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index"`
	Team1Name    string    `json:"team1_name" gorm:"not null"`
	Team2Name    string    `json:"team2_name" gorm:"not null"`
	WinnerName   string    `json:"winner_name" gorm:"not null"`
	ScoreTeam1   int       `json:"score_team1" gorm:"default:0"`
	ScoreTeam2   int       `json:"score_team2" gorm:"default:0"`
	MatchDate    time.Time `json:"match_date" gorm:"index"`
	MatchType    string    `json:"match_type" gorm:"default:'standard'"`
}

func (MatchResult) TableName() string { return "match_results" }

// Winner applies the write-time winner rule to a pair of team names.
func Winner(team1, team2 string, score1, score2 int) string {
	if score1 >= score2 {
		return team1
	}
	return team2
}
