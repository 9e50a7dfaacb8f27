package services

import (
	"log"
	"path/filepath"
	"time"

	"tournament-social-system/middleware"
	"tournament-social-system/models"
	"tournament-social-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialService struct {
	DB *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{DB: db}
}

// postView is a post row decorated with author fields and like/comment
// aggregates computed per request.
type postView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	TournamentID   *string   `json:"tournament_id,omitempty"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url,omitempty"`
	PostType       string    `json:"post_type"`
	LikesCount     int       `json:"likes_count"`
	CommentsCount  int       `json:"comments_count"`
	UserLiked      bool      `json:"user_liked"`
	CreatedAt      time.Time `json:"created_at"`
}

const postSelect = `
    SELECT sp.id, sp.user_id, u.username, u.profile_picture, sp.tournament_id,
           sp.content, sp.image_url, sp.post_type, sp.created_at,
           (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = sp.id) AS likes_count,
           (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = sp.id) AS comments_count,
           (SELECT COUNT(*) FROM post_likes pl2 WHERE pl2.post_id = sp.id AND pl2.user_id = ?) AS user_liked
    FROM social_posts sp
    JOIN users u ON sp.user_id = u.id`

// GetPosts serves the three feed categories. "home" is the global firehose
// capped at 50, "friends" restricts to authors the viewer has an accepted
// connection with in either direction, "you" is the viewer's own posts.
func (s *SocialService) GetPosts(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	category := c.Query("category", "home")

	var query string
	args := []interface{}{userID}

	switch category {
	case "home":
		query = postSelect + `
            ORDER BY sp.created_at DESC
            LIMIT 50`
	case "friends":
		if userID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "not authenticated"})
		}
		query = postSelect + `
            WHERE sp.user_id IN (
                SELECT uc.following_id FROM user_connections uc
                WHERE uc.follower_id = ? AND uc.connection_type = 'accepted'
                UNION
                SELECT uc2.follower_id FROM user_connections uc2
                WHERE uc2.following_id = ? AND uc2.connection_type = 'accepted'
            )
            ORDER BY sp.created_at DESC`
		args = append(args, userID, userID)
	case "you":
		if userID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "not authenticated"})
		}
		query = postSelect + `
            WHERE sp.user_id = ?
            ORDER BY sp.created_at DESC`
		args = append(args, userID)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "category must be one of home, friends, you"})
	}

	posts := []postView{}
	if err := s.DB.Raw(query, args...).Scan(&posts).Error; err != nil {
		log.Printf("[SOCIAL] feed %s failed: %v", category, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch posts"})
	}
	return c.JSON(posts)
}

// CreatePost accepts multipart form data so an image can ride along with the
// text. The image is optional and only handled when media storage is enabled.
func (s *SocialService) CreatePost(c *fiber.Ctx) error {
	content := c.FormValue("content")
	if content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content is required"})
	}

	postType := c.FormValue("post_type")
	if postType == "" {
		postType = models.PostGeneral
	}
	if !models.ValidPostType(postType) {
		return c.Status(400).JSON(fiber.Map{"error": "post_type must be one of general, achievement, tournament_update"})
	}

	var tournamentID *string
	if v := c.FormValue("tournament_id"); v != "" {
		var tournament models.Tournament
		err := s.DB.First(&tournament, "id = ?", v).Error
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
		}
		tournamentID = &v
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil && file != nil {
		if !utils.MediaEnabled() {
			return c.Status(400).JSON(fiber.Map{"error": "media uploads are not enabled"})
		}
		key := "posts/" + uuid.NewString() + filepath.Ext(file.Filename)
		url, err := utils.UploadImageToR2(file, key)
		if err != nil {
			log.Printf("[SOCIAL] image upload failed: %v", err)
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		imageURL = url
	}

	post := &models.Post{
		ID:           uuid.NewString(),
		UserID:       middleware.UserID(c),
		TournamentID: tournamentID,
		Content:      content,
		ImageURL:     imageURL,
		PostType:     postType,
	}
	if err := s.DB.Create(post).Error; err != nil {
		log.Printf("[SOCIAL] post insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(post)
}

func (s *SocialService) UpdatePost(c *fiber.Ctx) error {
	var post models.Post
	err := s.DB.First(&post, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}
	if post.UserID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "you can only edit your own posts"})
	}

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

	if err := s.DB.Model(&post).Update("content", req.Content).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(post)
}

// DeletePost removes the post with its likes and comments in one transaction.
func (s *SocialService) DeletePost(c *fiber.Ctx) error {
	var post models.Post
	err := s.DB.First(&post, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}
	if post.UserID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "you can only delete your own posts"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", post.ID).Error
	})
	if err != nil {
		log.Printf("[SOCIAL] post delete failed for %s: %v", post.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}

// ToggleLike flips the caller's like on a post. The insert-or-delete and the
// likes_count rewrite share one transaction so the counter cannot drift.
func (s *SocialService) ToggleLike(c *fiber.Ctx) error {
	postID := c.Params("id")
	userID := middleware.UserID(c)

	var post models.Post
	err := s.DB.First(&post, "id = ?", postID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}

	var liked bool
	var likesCount int64
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			like := &models.PostLike{
				ID:     uuid.NewString(),
				PostID: postID,
				UserID: userID,
			}
			if err := tx.Create(like).Error; err != nil {
				return err
			}
			liked = true
		case err != nil:
			return err
		default:
			if err := tx.Delete(&models.PostLike{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			liked = false
		}

		if err := tx.Model(&models.PostLike{}).
			Where("post_id = ?", postID).Count(&likesCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("likes_count", likesCount).Error
	})
	if err != nil {
		log.Printf("[SOCIAL] like toggle failed for post %s: %v", postID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error toggling like"})
	}

	return c.JSON(fiber.Map{"liked": liked, "likes_count": likesCount})
}

// commentView is a comment joined with its author's display fields.
type commentView struct {
	ID              string     `json:"id"`
	PostID          string     `json:"post_id"`
	UserID          string     `json:"user_id"`
	Username        string     `json:"username"`
	ProfilePicture  string     `json:"profile_picture,omitempty"`
	Content         string     `json:"content"`
	ParentCommentID *string    `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
}

func (s *SocialService) GetComments(c *fiber.Ctx) error {
	postID := c.Params("id")

	var post models.Post
	err := s.DB.First(&post, "id = ?", postID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}

	comments := []commentView{}
	err = s.DB.Raw(`
        SELECT cm.id, cm.post_id, cm.user_id, u.username, u.profile_picture,
               cm.content, cm.parent_comment_id, cm.created_at, cm.edited_at
        FROM comments cm
        JOIN users u ON cm.user_id = u.id
        WHERE cm.post_id = ?
        ORDER BY cm.created_at ASC
    `, postID).Scan(&comments).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch comments"})
	}
	return c.JSON(comments)
}

// CreateComment adds a comment (optionally threaded under a parent) and
// recomputes the post's comments_count in the same transaction.
func (s *SocialService) CreateComment(c *fiber.Ctx) error {
	postID := c.Params("id")

	var post models.Post
	err := s.DB.First(&post, "id = ?", postID).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}

	type Req struct {
		Content         string  `json:"content"`
		ParentCommentID *string `json:"parent_comment_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"error": "content is required"})
	}
	if req.ParentCommentID != nil {
		var parent models.Comment
		err := s.DB.First(&parent, "id = ? AND post_id = ?", *req.ParentCommentID, postID).Error
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "parent comment not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching parent comment"})
		}
	}

	comment := &models.Comment{
		ID:              uuid.NewString(),
		PostID:          postID,
		UserID:          middleware.UserID(c),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return recomputeCommentsCount(tx, postID)
	})
	if err != nil {
		log.Printf("[SOCIAL] comment insert failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	var view commentView
	err = s.DB.Raw(`
        SELECT cm.id, cm.post_id, cm.user_id, u.username, u.profile_picture,
               cm.content, cm.parent_comment_id, cm.created_at, cm.edited_at
        FROM comments cm
        JOIN users u ON cm.user_id = u.id
        WHERE cm.id = ?
    `, comment.ID).Scan(&view).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching comment"})
	}
	return c.Status(201).JSON(view)
}

func (s *SocialService) UpdateComment(c *fiber.Ctx) error {
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

	var comment models.Comment
	err := s.DB.First(&comment, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "comment not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching comment"})
	}
	if comment.UserID != middleware.UserID(c) {
		return c.Status(403).JSON(fiber.Map{"error": "you can only edit your own comments"})
	}

	now := time.Now()
	err = s.DB.Model(&comment).Updates(map[string]interface{}{
		"content":   req.Content,
		"edited_at": now,
	}).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(fiber.Map{"message": "comment updated", "edited": true})
}

// DeleteComment removes a comment (author or post owner) and recomputes the
// post's comments_count in the same transaction.
func (s *SocialService) DeleteComment(c *fiber.Ctx) error {
	var comment models.Comment
	err := s.DB.First(&comment, "id = ?", c.Params("id")).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "comment not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching comment"})
	}

	var post models.Post
	if err := s.DB.First(&post, "id = ?", comment.PostID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}

	userID := middleware.UserID(c)
	if comment.UserID != userID && post.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "you can only delete your own comments or comments on your posts"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, "id = ?", comment.ID).Error; err != nil {
			return err
		}
		return recomputeCommentsCount(tx, comment.PostID)
	})
	if err != nil {
		log.Printf("[SOCIAL] comment delete failed for %s: %v", comment.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB delete failed"})
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}

// recomputeCommentsCount rewrites the denormalized counter from the true row
// count, never an in-place increment.
func recomputeCommentsCount(tx *gorm.DB, postID string) error {
	var count int64
	if err := tx.Model(&models.Comment{}).
		Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		Update("comments_count", count).Error
}
