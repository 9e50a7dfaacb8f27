package services

import (
	"log"
	"time"

	"tournament-social-system/middleware"
	"tournament-social-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

func (s *MatchService) GetTournamentMatches(c *fiber.Ctx) error {
	matches := []models.MatchResult{}
	err := s.DB.Where("tournament_id = ?", c.Params("id")).
		Order("match_date DESC").
		Find(&matches).Error
	if err != nil {
		log.Printf("[MATCHES] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	var match models.MatchResult
	err := s.DB.First(&match, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching match"})
	}
	return c.JSON(match)
}

// ReportMatch records a result for a tournament. The winner is fixed at write
// time: team1 on score1 >= score2, so ties go to the first-listed team.
func (s *MatchService) ReportMatch(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", tournamentID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.OrganizerID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the organizer can report matches"})
	}

	type Req struct {
		Team1     string `json:"team1"`
		Team2     string `json:"team2"`
		Score1    int    `json:"score1"`
		Score2    int    `json:"score2"`
		Date      string `json:"date"`
		MatchType string `json:"match_type"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Team1 == "" || req.Team2 == "" {
		return c.Status(400).JSON(fiber.Map{"error": "team1 and team2 are required"})
	}
	if req.Score1 < 0 || req.Score2 < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "scores must be non-negative"})
	}
	if req.MatchType == "" {
		req.MatchType = models.MatchStandard
	}
	if !models.ValidMatchType(req.MatchType) {
		return c.Status(400).JSON(fiber.Map{"error": "match_type must be one of standard, semifinal, final"})
	}

	matchDate := time.Now()
	if req.Date != "" {
		matchDate, err = parseDate(req.Date)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date (use RFC3339 or YYYY-MM-DD)"})
		}
	}

	match := &models.MatchResult{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Team1Name:    req.Team1,
		Team2Name:    req.Team2,
		WinnerName:   models.Winner(req.Team1, req.Team2, req.Score1, req.Score2),
		ScoreTeam1:   req.Score1,
		ScoreTeam2:   req.Score2,
		MatchDate:    matchDate,
		MatchType:    req.MatchType,
	}
	if err := s.DB.Create(match).Error; err != nil {
		log.Printf("[MATCHES] insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(match)
}

// UpdateMatch rewrites scores and date; the winner is recomputed from the
// stored team names with the same tie-break rule.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	var match models.MatchResult
	err := s.DB.First(&match, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching match"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", match.TournamentID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.OrganizerID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the organizer can edit matches"})
	}

	type Req struct {
		Score1 *int   `json:"score1"`
		Score2 *int   `json:"score2"`
		Date   string `json:"date"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Score1 != nil {
		if *req.Score1 < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "scores must be non-negative"})
		}
		match.ScoreTeam1 = *req.Score1
	}
	if req.Score2 != nil {
		if *req.Score2 < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "scores must be non-negative"})
		}
		match.ScoreTeam2 = *req.Score2
	}
	if req.Date != "" {
		matchDate, err := parseDate(req.Date)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date (use RFC3339 or YYYY-MM-DD)"})
		}
		match.MatchDate = matchDate
	}
	match.WinnerName = models.Winner(match.Team1Name, match.Team2Name, match.ScoreTeam1, match.ScoreTeam2)

	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("[MATCHES] update failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(match)
}

func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	var match models.MatchResult
	err := s.DB.First(&match, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching match"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", match.TournamentID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.OrganizerID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the organizer can delete matches"})
	}

	if err := s.DB.Delete(&models.MatchResult{}, "id = ?", match.ID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "match deleted"})
}
