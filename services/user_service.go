package services

import (
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tournament-social-system/middleware"
	"tournament-social-system/models"
	"tournament-social-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetAllUsers(c *fiber.Ctx) error {
	type UserSummary struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"created_at"`
	}
	var users []UserSummary
	if err := s.DB.Model(&models.User{}).
		Select("id, username, created_at").
		Order("username ASC").
		Scan(&users).Error; err != nil {
		log.Printf("[USERS] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch users"})
	}
	return c.JSON(users)
}

// SearchUsers matches username or email, case-insensitively.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.User{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed"})
	}

	type UserSummary struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		Email          string `json:"email"`
		ProfilePicture string `json:"profile_picture,omitempty"`
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, ProfilePicture: u.ProfilePicture}
	}
	return c.JSON(res)
}

func (s *UserService) GetUserByID(c *fiber.Ctx) error {
	var user models.User
	err := s.DB.First(&user, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching user"})
	}

	return c.JSON(fiber.Map{
		"id":              user.ID,
		"username":        user.Username,
		"bio":             user.Bio,
		"profile_picture": user.ProfilePicture,
		"last_login":      user.LastLogin,
		"created_at":      user.CreatedAt,
	})
}

// GetProfile returns the caller's account plus their tournament history.
func (s *UserService) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching profile"})
	}

	type JoinedTournament struct {
		Title     string    `json:"title"`
		GameType  string    `json:"game_type"`
		TeamName  string    `json:"team_name"`
		Placement int       `json:"placement"`
		Score     float64   `json:"score"`
		StartDate time.Time `json:"start_date"`
	}
	var tournaments []JoinedTournament
	err := s.DB.Raw(`
        SELECT t.title, t.game_type, tp.team_name, tp.placement, tp.score, t.start_date
        FROM tournament_participants tp
        JOIN tournaments t ON tp.tournament_id = t.id
        WHERE tp.user_id = ?
        ORDER BY t.start_date DESC
    `, userID).Scan(&tournaments).Error
	if err != nil {
		log.Printf("[USERS] profile tournament history failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching profile"})
	}

	return c.JSON(fiber.Map{"user": user, "tournaments": tournaments})
}

// UpdateProfile applies a partial update from a multipart form. Absent fields
// keep their stored values; the avatar goes to object storage.
func (s *UserService) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching profile"})
	}

	updates := map[string]interface{}{}
	if v := c.FormValue("bio"); v != "" {
		updates["bio"] = v
	}
	if v := strings.TrimSpace(c.FormValue("username")); v != "" && v != user.Username {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("username = ? AND id <> ?", v, userID).
			Count(&count).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error checking username"})
		}
		if count > 0 {
			return c.Status(409).JSON(fiber.Map{"error": "username already taken"})
		}
		updates["username"] = v
	}
	if v := strings.TrimSpace(strings.ToLower(c.FormValue("email"))); v != "" && v != user.Email {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("email = ? AND id <> ?", v, userID).
			Count(&count).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error checking email"})
		}
		if count > 0 {
			return c.Status(409).JSON(fiber.Map{"error": "email already taken"})
		}
		updates["email"] = v
	}

	if avatar, err := c.FormFile("avatar"); err == nil && avatar.Size > 0 {
		ext := filepath.Ext(avatar.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		url, err := utils.UploadImageToR2(avatar, "avatars/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[USERS] avatar upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload avatar"})
		}
		updates["profile_picture"] = url
	}

	if len(updates) == 0 {
		return c.JSON(user)
	}
	if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "username or email already taken"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}

	s.DB.First(&user, "id = ?", userID)
	return c.JSON(user)
}
