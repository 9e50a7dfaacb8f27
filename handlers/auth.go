package handlers

import (
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Post("/auth/register", authService.Register)
	app.Post("/auth/login", authService.Login)
	app.Post("/auth/logout", authService.Logout)
}
