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

// ConnectionService owns the directed follow graph and its approval state
// machine: edges are created pending, the target accepts or blocks, and
// either endpoint may remove the edge. Accepting never creates the reverse
// edge; mutual following is always two explicit rows.
type ConnectionService struct {
	DB *gorm.DB
}

func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{DB: db}
}

// connectionEntry is one edge joined with the counterpart user's display
// fields. Which endpoint is the counterpart depends on the set being listed.
type connectionEntry struct {
	ID             string    `json:"id"`
	FollowerID     string    `json:"follower_id"`
	FollowingID    string    `json:"following_id"`
	ConnectionType string    `json:"connection_type"`
	CreatedAt      time.Time `json:"created_at"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}

// ListConnections returns the four-way view of a user's edges: accepted
// inbound (followers), accepted outbound (following), pending inbound
// (incoming requests), pending outbound (outgoing requests). Newest first in
// each set; the sets are disjoint by construction.
func (s *ConnectionService) ListConnections(c *fiber.Ctx) error {
	userID := c.Params("id")

	// The join side flips with the direction: for inbound sets the
	// counterpart is the follower, for outbound sets the following.
	inbound := `
        SELECT uc.id, uc.follower_id, uc.following_id, uc.connection_type, uc.created_at,
               u.username, u.email, u.profile_picture
        FROM user_connections uc
        JOIN users u ON uc.follower_id = u.id
        WHERE uc.following_id = ? AND uc.connection_type = ?
        ORDER BY uc.created_at DESC`
	outbound := `
        SELECT uc.id, uc.follower_id, uc.following_id, uc.connection_type, uc.created_at,
               u.username, u.email, u.profile_picture
        FROM user_connections uc
        JOIN users u ON uc.following_id = u.id
        WHERE uc.follower_id = ? AND uc.connection_type = ?
        ORDER BY uc.created_at DESC`

	sets := []struct {
		name  string
		query string
		state string
	}{
		{"followers", inbound, models.ConnectionAccepted},
		{"following", outbound, models.ConnectionAccepted},
		{"incoming_pending", inbound, models.ConnectionPending},
		{"outgoing_pending", outbound, models.ConnectionPending},
	}

	result := fiber.Map{}
	for _, set := range sets {
		entries := []connectionEntry{}
		if err := s.DB.Raw(set.query, userID, set.state).Scan(&entries).Error; err != nil {
			log.Printf("[CONNECTIONS] fetching %s for user %s failed: %v", set.name, userID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch connections"})
		}
		result[set.name] = entries
	}

	return c.JSON(result)
}

// CreateConnection inserts a pending edge from the follower in the URL to the
// user in the body. The caller must *be* the follower. At most one edge may
// exist per ordered pair regardless of state; the composite unique index is
// the authoritative guard and the pre-check only gives a cleaner error.
func (s *ConnectionService) CreateConnection(c *fiber.Ctx) error {
	followerID := c.Params("id")
	if middleware.UserID(c) != followerID {
		return c.Status(403).JSON(fiber.Map{"error": "you can only create follow requests as yourself"})
	}

	type Req struct {
		FollowingID string `json:"following_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.FollowingID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "following_id is required"})
	}
	if req.FollowingID == followerID {
		return c.Status(400).JSON(fiber.Map{"error": "cannot follow yourself"})
	}

	var target models.User
	if err := s.DB.First(&target, "id = ?", req.FollowingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching user"})
	}

	var count int64
	if err := s.DB.Model(&models.Connection{}).
		Where("follower_id = ? AND following_id = ?", followerID, req.FollowingID).
		Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking existing connection"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "connection already exists"})
	}

	connection := &models.Connection{
		ID:             uuid.NewString(),
		FollowerID:     followerID,
		FollowingID:    req.FollowingID,
		ConnectionType: models.ConnectionPending,
	}
	if err := s.DB.Create(connection).Error; err != nil {
		// Two concurrent requests can both pass the pre-check; the unique
		// index decides, and the loser still reads as a duplicate.
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "connection already exists"})
		}
		log.Printf("[CONNECTIONS] insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(connection)
}

// UpdateStatus moves an edge between pending/accepted/blocked. Only the edge
// target may do this, since they are the party approving or blocking. The mutation
// touches connection_type alone.
func (s *ConnectionService) UpdateStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if !models.ValidConnectionType(req.Status) {
		return c.Status(400).JSON(fiber.Map{"error": "status must be one of pending, accepted, blocked"})
	}

	var connection models.Connection
	err := s.DB.First(&connection, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "connection not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching connection"})
	}

	if middleware.UserID(c) != connection.FollowingID {
		return c.Status(403).JSON(fiber.Map{"error": "only the request target can change its status"})
	}

	if err := s.DB.Model(&connection).Update("connection_type", req.Status).Error; err != nil {
		log.Printf("[CONNECTIONS] status update failed for %s: %v", connection.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}

	return c.JSON(fiber.Map{"message": "connection status updated", "connection_type": req.Status})
}

// RemoveConnection deletes an edge. Either endpoint may remove it (unfollow,
// cancel a request, or drop an accepted connection).
func (s *ConnectionService) RemoveConnection(c *fiber.Ctx) error {
	var connection models.Connection
	err := s.DB.First(&connection, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "connection not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching connection"})
	}

	userID := middleware.UserID(c)
	if userID != connection.FollowerID && userID != connection.FollowingID {
		return c.Status(403).JSON(fiber.Map{"error": "you are not part of this connection"})
	}

	if err := s.DB.Delete(&models.Connection{}, "id = ?", connection.ID).Error; err != nil {
		log.Printf("[CONNECTIONS] delete failed for %s: %v", connection.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}

	return c.JSON(fiber.Map{"message": "connection deleted"})
}
