package services_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tournament-social-system/handlers"
	"tournament-social-system/middleware"
	"tournament-social-system/models"
	"tournament-social-system/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestApp wires the full route surface against an in-memory database named
// after the test, so tests stay isolated from each other.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Connection{},
		&models.Tournament{},
		&models.Participant{},
		&models.MatchResult{},
		&models.Discussion{},
		&models.Reply{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	app := fiber.New()
	app.Use(middleware.SessionMiddleware(db))

	handlers.SetupAuthRoutes(app, services.NewAuthService(db, time.Hour))
	handlers.SetupUserRoutes(app, services.NewUserService(db))
	handlers.SetupConnectionRoutes(app, services.NewConnectionService(db))
	handlers.SetupTournamentRoutes(app, services.NewTournamentService(db), services.NewParticipantService(db))
	handlers.SetupMatchRoutes(app, services.NewMatchService(db))
	handlers.SetupDiscussionRoutes(app, services.NewDiscussionService(db))
	handlers.SetupSocialRoutes(app, services.NewSocialService(db))

	return app, db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

func createSession(t *testing.T, db *gorm.DB, userID string) string {
	t.Helper()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return session.ID
}

// doJSON sends a JSON request, optionally authenticated by a session id.
func doJSON(t *testing.T, app *fiber.App, method, path, body, sid string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// doForm sends a urlencoded form, the shape the post composer submits.
func doForm(t *testing.T, app *fiber.App, method, path, form, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return out
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return out
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, body)
	}
}
