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

type DiscussionService struct {
	DB *gorm.DB
}

func NewDiscussionService(db *gorm.DB) *DiscussionService {
	return &DiscussionService{DB: db}
}

// GetDiscussions lists a tournament's threads, pinned first.
func (s *DiscussionService) GetDiscussions(c *fiber.Ctx) error {
	type discussionView struct {
		models.Discussion
		CreatorUsername string `json:"creator_username"`
	}
	threads := []discussionView{}
	err := s.DB.Raw(`
        SELECT td.*, u.username AS creator_username
        FROM tournament_discussions td
        JOIN users u ON td.creator_id = u.id
        WHERE td.tournament_id = ?
        ORDER BY td.is_pinned DESC, td.created_at DESC
    `, c.Params("id")).Scan(&threads).Error
	if err != nil {
		log.Printf("[DISCUSSIONS] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch discussions"})
	}
	return c.JSON(threads)
}

// CreateDiscussion opens a thread on a tournament. Titles are unique per
// tournament; the composite unique index backs the pre-check.
func (s *DiscussionService) CreateDiscussion(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	type Req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	var tournament models.Tournament
	err := s.DB.First(&tournament, "id = ?", tournamentID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	var count int64
	if err := s.DB.Model(&models.Discussion{}).
		Where("tournament_id = ? AND title = ?", tournamentID, req.Title).
		Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking title"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "discussion with this title already exists"})
	}

	discussion := &models.Discussion{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		CreatorID:    middleware.UserID(c),
		Title:        req.Title,
		Description:  req.Description,
	}
	if err := s.DB.Create(discussion).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "discussion with this title already exists"})
		}
		log.Printf("[DISCUSSIONS] insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(discussion)
}

func (s *DiscussionService) UpdateDiscussion(c *fiber.Ctx) error {
	var discussion models.Discussion
	err := s.DB.First(&discussion, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "discussion not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching discussion"})
	}
	if discussion.CreatorID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can edit this discussion"})
	}

	type Req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsPinned    *bool   `json:"is_pinned"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Title != nil {
		if *req.Title == "" {
			return c.Status(400).JSON(fiber.Map{"error": "title cannot be empty"})
		}
		discussion.Title = *req.Title
	}
	if req.Description != nil {
		discussion.Description = *req.Description
	}
	if req.IsPinned != nil {
		discussion.IsPinned = *req.IsPinned
	}

	if err := s.DB.Save(&discussion).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "discussion with this title already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(discussion)
}

func (s *DiscussionService) DeleteDiscussion(c *fiber.Ctx) error {
	var discussion models.Discussion
	err := s.DB.First(&discussion, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "discussion not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching discussion"})
	}
	if discussion.CreatorID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can delete this discussion"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", discussion.ID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Discussion{}, "id = ?", discussion.ID).Error
	})
	if err != nil {
		log.Printf("[DISCUSSIONS] delete failed for %s: %v", discussion.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "discussion deleted"})
}

func (s *DiscussionService) GetReplies(c *fiber.Ctx) error {
	type replyView struct {
		ID           string     `json:"id"`
		DiscussionID string     `json:"discussion_id"`
		UserID       string     `json:"user_id"`
		AuthorName   string     `json:"author_name"`
		Content      string     `json:"content"`
		CreatedAt    time.Time  `json:"created_at"`
		EditedAt     *time.Time `json:"edited_at,omitempty"`
	}
	replies := []replyView{}
	err := s.DB.Raw(`
        SELECT dr.id, dr.discussion_id, dr.user_id, u.username AS author_name,
               dr.content, dr.created_at, dr.edited_at
        FROM discussion_replies dr
        JOIN users u ON dr.user_id = u.id
        WHERE dr.discussion_id = ?
        ORDER BY dr.created_at ASC
    `, c.Params("id")).Scan(&replies).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch replies"})
	}
	return c.JSON(replies)
}

// CreateReply posts to a thread and recomputes replies_count from COUNT(*)
// inside the same transaction as the insert.
func (s *DiscussionService) CreateReply(c *fiber.Ctx) error {
	discussionID := c.Params("id")

	type Req struct {
		Content string `json:"content"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content is required"})
	}

	var discussion models.Discussion
	err := s.DB.First(&discussion, "id = ?", discussionID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "discussion not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching discussion"})
	}

	reply := &models.Reply{
		ID:           uuid.NewString(),
		DiscussionID: discussionID,
		UserID:       middleware.UserID(c),
		Content:      req.Content,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return recomputeRepliesCount(tx, discussionID)
	})
	if err != nil {
		log.Printf("[DISCUSSIONS] reply insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(reply)
}

func (s *DiscussionService) UpdateReply(c *fiber.Ctx) error {
	type Req struct {
		Content string `json:"content"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content is required"})
	}

	var reply models.Reply
	err := s.DB.First(&reply, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "reply not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching reply"})
	}
	if reply.UserID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "you can only edit your own replies"})
	}

	now := time.Now()
	err = s.DB.Model(&reply).Updates(map[string]interface{}{
		"content":   req.Content,
		"edited_at": now,
	}).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(fiber.Map{"message": "reply updated", "edited": true})
}

// DeleteReply removes a reply (author or thread creator) and recomputes the
// thread's replies_count in the same transaction.
func (s *DiscussionService) DeleteReply(c *fiber.Ctx) error {
	var reply models.Reply
	err := s.DB.First(&reply, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "reply not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching reply"})
	}

	var discussion models.Discussion
	if err := s.DB.First(&discussion, "id = ?", reply.DiscussionID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching discussion"})
	}

	userID := middleware.UserID(c)
	if reply.UserID != userID && discussion.CreatorID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "you can only delete your own replies or replies in your discussions"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Reply{}, "id = ?", reply.ID).Error; err != nil {
			return err
		}
		return recomputeRepliesCount(tx, reply.DiscussionID)
	})
	if err != nil {
		log.Printf("[DISCUSSIONS] reply delete failed for %s: %v", reply.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "reply deleted"})
}

// recomputeRepliesCount rewrites the denormalized counter from the true row
// count, never an in-place increment.
func recomputeRepliesCount(tx *gorm.DB, discussionID string) error {
	var count int64
	if err := tx.Model(&models.Reply{}).
		Where("discussion_id = ?", discussionID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Discussion{}).Where("id = ?", discussionID).
		Update("replies_count", count).Error
}
