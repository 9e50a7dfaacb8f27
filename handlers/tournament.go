package handlers

import (
	"tournament-social-system/middleware"
	"tournament-social-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, participantService *services.ParticipantService) {
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Post("/tournaments", middleware.RequireUser(), tournamentService.CreateTournament)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	app.Put("/tournaments/:id", middleware.RequireUser(), tournamentService.UpdateTournament)
	app.Delete("/tournaments/:id", middleware.RequireUser(), tournamentService.DeleteTournament)

	app.Get("/tournaments/:id/participants", participantService.GetParticipants)
	app.Post("/tournaments/:id/participants", middleware.RequireUser(), participantService.JoinTournament)
	app.Get("/tournaments/:id/teams", participantService.GetTeams)
	app.Patch("/participants/:id", middleware.RequireUser(), participantService.UpdateParticipant)
	app.Delete("/participants/:id", middleware.RequireUser(), participantService.RemoveParticipant)
}
