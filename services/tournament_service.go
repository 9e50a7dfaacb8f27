package services

import (
	"log"
	"time"

	"tournament-social-system/middleware"
	"tournament-social-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// tournamentView is a tournament row joined with organizer display fields and
// the live roster count.
type tournamentView struct {
	models.Tournament
	OrganizerUsername string `json:"organizer_username"`
	ParticipantCount  int64  `json:"participant_count"`
}

// parseDate accepts RFC3339 or a bare date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	query := `
        SELECT t.*, u.username AS organizer_username, COUNT(tp.id) AS participant_count
        FROM tournaments t
        LEFT JOIN users u ON t.organizer_id = u.id
        LEFT JOIN tournament_participants tp ON tp.tournament_id = t.id`

	conditions := ""
	args := []interface{}{}
	addCondition := func(clause string, arg interface{}) {
		if conditions == "" {
			conditions = " WHERE " + clause
		} else {
			conditions += " AND " + clause
		}
		args = append(args, arg)
	}

	if v := c.Query("game_type"); v != "" {
		addCondition("t.game_type = ?", v)
	}
	if v := c.Query("status"); v != "" {
		addCondition("t.status = ?", v)
	}
	if v := c.Query("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid from date"})
		}
		addCondition("t.start_date >= ?", from)
	}
	if v := c.Query("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid to date"})
		}
		addCondition("t.start_date <= ?", to)
	}

	query += conditions + `
        GROUP BY t.id, u.username
        ORDER BY t.start_date DESC`

	tournaments := []tournamentView{}
	if err := s.DB.Raw(query, args...).Scan(&tournaments).Error; err != nil {
		log.Printf("[TOURNAMENTS] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	var view tournamentView
	query := `
        SELECT t.*, u.username AS organizer_username, COUNT(tp.id) AS participant_count
        FROM tournaments t
        LEFT JOIN users u ON t.organizer_id = u.id
        LEFT JOIN tournament_participants tp ON tp.tournament_id = t.id
        WHERE t.id = ?
        GROUP BY t.id, u.username`
	err := s.DB.Raw(query, c.Params("id")).Scan(&view).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if view.ID == "" {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(view)
}

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	type Req struct {
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		GameType        string  `json:"game_type"`
		EntryFee        float64 `json:"entry_fee"`
		PrizePool       float64 `json:"prize_pool"`
		MaxParticipants int     `json:"max_participants"`
		StartDate       string  `json:"start_date"`
		EndDate         string  `json:"end_date"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Title == "" || req.GameType == "" || req.StartDate == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title, game_type, and start_date are required"})
	}
	if req.MaxParticipants <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "max_participants must be a positive integer"})
	}
	if req.EntryFee < 0 || req.PrizePool < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee and prize_pool must be non-negative"})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339 or YYYY-MM-DD)"})
	}
	if !startDate.After(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "start_date must be in the future"})
	}

	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = parseDate(req.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339 or YYYY-MM-DD)"})
		}
		if !endDate.After(startDate) {
			return c.Status(400).JSON(fiber.Map{"error": "end_date must be after start_date"})
		}
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Slug:            slug.Make(req.Title),
		Description:     req.Description,
		GameType:        req.GameType,
		EntryFee:        req.EntryFee,
		PrizePool:       req.PrizePool,
		MaxParticipants: req.MaxParticipants,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          models.TournamentUpcoming,
		OrganizerID:     middleware.UserID(c),
	}
	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("[TOURNAMENTS] insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(tournament)
}

// UpdateTournament applies a partial update; absent fields keep their stored
// values. Only the organizer may update.
func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.OrganizerID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the organizer can update this tournament"})
	}

	type Req struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		GameType        *string  `json:"game_type"`
		EntryFee        *float64 `json:"entry_fee"`
		PrizePool       *float64 `json:"prize_pool"`
		MaxParticipants *int     `json:"max_participants"`
		StartDate       *string  `json:"start_date"`
		EndDate         *string  `json:"end_date"`
		Status          *string  `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Title != nil {
		if *req.Title == "" {
			return c.Status(400).JSON(fiber.Map{"error": "title cannot be empty"})
		}
		tournament.Title = *req.Title
		tournament.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		tournament.Description = *req.Description
	}
	if req.GameType != nil {
		if *req.GameType == "" {
			return c.Status(400).JSON(fiber.Map{"error": "game_type cannot be empty"})
		}
		tournament.GameType = *req.GameType
	}
	if req.EntryFee != nil {
		if *req.EntryFee < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be non-negative"})
		}
		tournament.EntryFee = *req.EntryFee
	}
	if req.PrizePool != nil {
		if *req.PrizePool < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "prize_pool must be non-negative"})
		}
		tournament.PrizePool = *req.PrizePool
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "max_participants must be a positive integer"})
		}
		tournament.MaxParticipants = *req.MaxParticipants
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339 or YYYY-MM-DD)"})
		}
		tournament.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339 or YYYY-MM-DD)"})
		}
		tournament.EndDate = endDate
	}
	if !tournament.EndDate.IsZero() && !tournament.EndDate.After(tournament.StartDate) {
		return c.Status(400).JSON(fiber.Map{"error": "end_date must be after start_date"})
	}
	if req.Status != nil {
		if *req.Status != models.TournamentUpcoming &&
			*req.Status != models.TournamentActive &&
			*req.Status != models.TournamentCompleted {
			return c.Status(400).JSON(fiber.Map{"error": "status must be one of upcoming, active, completed"})
		}
		tournament.Status = *req.Status
	}

	if err := s.DB.Save(&tournament).Error; err != nil {
		log.Printf("[TOURNAMENTS] update failed for %s: %v", tournament.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(tournament)
}

// DeleteTournament removes the tournament and its dependents in one
// transaction. Only the organizer may delete.
func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	if tournament.OrganizerID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the organizer can delete this tournament"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", tournament.ID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", tournament.ID).Delete(&models.MatchResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discussion_id IN (?)",
			tx.Model(&models.Discussion{}).Select("id").Where("tournament_id = ?", tournament.ID),
		).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", tournament.ID).Delete(&models.Discussion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tournament{}, "id = ?", tournament.ID).Error
	})
	if err != nil {
		log.Printf("[TOURNAMENTS] delete failed for %s: %v", tournament.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}

	return c.JSON(fiber.Map{"message": "tournament deleted"})
}
