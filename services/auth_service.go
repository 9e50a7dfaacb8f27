package services

import (
	"log"
	"strings"
	"time"

	"tournament-social-system/middleware"
	"tournament-social-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB              *gorm.DB
	SessionLifetime time.Duration
}

func NewAuthService(db *gorm.DB, lifetime time.Duration) *AuthService {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &AuthService{DB: db, SessionLifetime: lifetime}
}

func (s *AuthService) Register(c *fiber.Ctx) error {
	type Req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username, email, and password are required"})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(fiber.Map{"error": "password must be at least 6 characters"})
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking existing user"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "username or email already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to hash password"})
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.DB.Create(user).Error; err != nil {
		// Unique index may still fire under a registration race.
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "username or email already exists"})
		}
		log.Printf("[AUTH] register insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(user)
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	type Req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and password are required"})
	}

	// The login field accepts either username or email.
	var user models.User
	err := s.DB.Where("username = ? OR email = ?", req.Username, strings.ToLower(req.Username)).
		First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching user"})
	}
	if !user.IsActive {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.SessionLifetime),
	}
	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// One live session per user.
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("last_login", now).Error
	})
	if err != nil {
		log.Printf("[AUTH] login session create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create session"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	user.LastLogin = &now
	return c.JSON(fiber.Map{"message": "login successful", "user": user})
}

func (s *AuthService) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(middleware.SessionCookie)
	if sid != "" {
		if err := s.DB.Delete(&models.Session{}, "id = ?", sid).Error; err != nil {
			log.Printf("[AUTH] logout delete failed: %v", err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"message": "logged out"})
}

// isUniqueViolation matches unique-constraint errors across postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
