package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConnectionRoutes(app *fiber.App, connectionService *services.ConnectionService) {
	app.Get("/connections/users/:id", connectionService.ListConnections)
	app.Post("/connections/follow/:id", middleware.RequireUser(), connectionService.CreateConnection)
	app.Patch("/connections/:id", middleware.RequireUser(), connectionService.UpdateStatus)
	app.Delete("/connections/:id", middleware.RequireUser(), connectionService.RemoveConnection)
}
