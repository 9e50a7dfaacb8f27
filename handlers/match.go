package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// The tournaments prefix is static and must register before /matches/:id.
	app.Get("/matches/tournaments/:id/matches", matchService.GetTournamentMatches)
	app.Post("/matches/tournaments/:id/matches", middleware.RequireUser(), matchService.ReportMatch)
	app.Get("/matches/:id", matchService.GetMatchByID)
	app.Patch("/matches/:id", middleware.RequireUser(), matchService.UpdateMatch)
	app.Delete("/matches/:id", middleware.RequireUser(), matchService.DeleteMatch)
}
