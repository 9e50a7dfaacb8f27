package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSocialRoutes(app *fiber.App, socialService *services.SocialService) {
	posts := app.Group("/posts", middleware.RequireUser())
	posts.Get("/", socialService.GetPosts)
	posts.Post("/", socialService.CreatePost)
	posts.Patch("/:id", socialService.UpdatePost)
	posts.Delete("/:id", socialService.DeletePost)
	posts.Post("/:id/like", socialService.ToggleLike)
	posts.Get("/:id/comments", socialService.GetComments)
	posts.Post("/:id/comments", socialService.CreateComment)

	app.Put("/comments/:id", middleware.RequireUser(), socialService.UpdateComment)
	app.Delete("/comments/:id", middleware.RequireUser(), socialService.DeleteComment)
}
