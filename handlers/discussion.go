package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDiscussionRoutes(app *fiber.App, discussionService *services.DiscussionService) {
	// Reply routes carry the static /replies segment and must register before
	// the bare /discussions/:id mutations.
	app.Patch("/discussions/replies/:id", middleware.RequireUser(), discussionService.UpdateReply)
	app.Delete("/discussions/replies/:id", middleware.RequireUser(), discussionService.DeleteReply)

	app.Get("/discussions/:id", discussionService.GetDiscussions)
	app.Post("/discussions/:id", middleware.RequireUser(), discussionService.CreateDiscussion)
	app.Patch("/discussions/:id", middleware.RequireUser(), discussionService.UpdateDiscussion)
	app.Delete("/discussions/:id", middleware.RequireUser(), discussionService.DeleteDiscussion)

	app.Get("/discussions/:id/replies", discussionService.GetReplies)
	app.Post("/discussions/:id/replies", middleware.RequireUser(), discussionService.CreateReply)
}
