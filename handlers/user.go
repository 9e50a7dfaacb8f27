package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	// Static segments before :id so /users/me and /users/search resolve.
	app.Get("/users/me", middleware.RequireUser(), userService.GetProfile)
	app.Put("/users/me", middleware.RequireUser(), userService.UpdateProfile)
	app.Get("/users/search", userService.SearchUsers)
	app.Get("/users", userService.GetAllUsers)
	app.Get("/users/:id", userService.GetUserByID)
}
