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

type ParticipantService struct {
	DB *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{DB: db}
}

func (s *ParticipantService) GetParticipants(c *fiber.Ctx) error {
	type participantView struct {
		ID               string    `json:"id"`
		UserID           string    `json:"user_id"`
		Username         string    `json:"username"`
		TeamName         string    `json:"team_name"`
		RegistrationDate time.Time `json:"registration_date"`
		Status           string    `json:"status"`
		Placement        int       `json:"placement"`
		Score            float64   `json:"score"`
	}
	participants := []participantView{}
	err := s.DB.Raw(`
        SELECT tp.id, tp.user_id, u.username, tp.team_name, tp.registration_date,
               tp.status, tp.placement, tp.score
        FROM tournament_participants tp
        JOIN users u ON tp.user_id = u.id
        WHERE tp.tournament_id = ?
        ORDER BY tp.registration_date DESC
    `, c.Params("id")).Scan(&participants).Error
	if err != nil {
		log.Printf("[PARTICIPANTS] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch participants"})
	}
	return c.JSON(participants)
}

// JoinTournament registers the caller. Capacity and the one-row-per-user rule
// are checked before insert; the composite unique index backs the latter.
func (s *ParticipantService) JoinTournament(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	userID := middleware.UserID(c)

	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", tournamentID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	var count int64
	if err := s.DB.Model(&models.Participant{}).
		Where("tournament_id = ?", tournamentID).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error counting participants"})
	}
	if count >= int64(tournament.MaxParticipants) {
		return c.Status(409).JSON(fiber.Map{"error": "tournament is full"})
	}

	var joined int64
	if err := s.DB.Model(&models.Participant{}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Count(&joined).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking registration"})
	}
	if joined > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "already joined this tournament"})
	}

	type Req struct {
		TeamName string `json:"team_name"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.TeamName == "" {
		var user models.User
		if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching user"})
		}
		req.TeamName = "Team_" + user.Username
	}

	participant := &models.Participant{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		TeamName:     req.TeamName,
		Status:       models.ParticipantRegistered,
	}
	if err := s.DB.Create(participant).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "already joined this tournament"})
		}
		log.Printf("[PARTICIPANTS] insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(participant)
}

func (s *ParticipantService) UpdateParticipant(c *fiber.Ctx) error {
	type Req struct {
		TeamName string `json:"team_name"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.TeamName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "team_name is required"})
	}

	var participant models.Participant
	err := s.DB.First(&participant, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "participant not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching participant"})
	}
	if participant.UserID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "you can only edit your own registration"})
	}

	if err := s.DB.Model(&participant).Update("team_name", req.TeamName).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(fiber.Map{"message": "participant updated"})
}

// RemoveParticipant drops a roster entry. The participant may withdraw; the
// tournament organizer may also remove them.
func (s *ParticipantService) RemoveParticipant(c *fiber.Ctx) error {
	var participant models.Participant
	err := s.DB.First(&participant, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "participant not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching participant"})
	}

	userID := middleware.UserID(c)
	if participant.UserID != userID {
		var tournament models.Tournament
		if err := s.DB.First(&tournament, "id = ?", participant.TournamentID).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
		}
		if tournament.OrganizerID != userID {
			return c.Status(403).JSON(fiber.Map{"error": "only the participant or organizer can remove a registration"})
		}
	}

	if err := s.DB.Delete(&models.Participant{}, "id = ?", participant.ID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "participant removed"})
}

func (s *ParticipantService) GetTeams(c *fiber.Ctx) error {
	var teams []string
	err := s.DB.Model(&models.Participant{}).
		Where("tournament_id = ?", c.Params("id")).
		Pluck("team_name", &teams).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch teams"})
	}
	return c.JSON(teams)
}
