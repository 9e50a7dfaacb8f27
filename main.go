package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tournament-social-system/handlers"
	"tournament-social-system/middleware"
	"tournament-social-system/models"
	"tournament-social-system/services"
	"tournament-social-system/utils"
	"tournament-social-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, enough for image uploads
	})

	app.Use(middleware.RequestLogger())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Set-Cookie",
		AllowCredentials: true, // cookie sessions need credentialed requests
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
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
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		if err == utils.ErrMediaDisabled {
			log.Println("⚠️  R2 credentials not set, image uploads disabled")
		} else {
			log.Fatal("failed to initialize R2 client:", err)
		}
	}

	app.Use(middleware.SessionMiddleware(db))

	authService := services.NewAuthService(db, 7*24*time.Hour)
	userService := services.NewUserService(db)
	connectionService := services.NewConnectionService(db)
	tournamentService := services.NewTournamentService(db)
	participantService := services.NewParticipantService(db)
	matchService := services.NewMatchService(db)
	discussionService := services.NewDiscussionService(db)
	socialService := services.NewSocialService(db)

	scheduler, err := services.StartSchedulers(db)
	if err != nil {
		log.Fatal("failed to start schedulers:", err)
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.SweepSessions(ctx, db, 15*time.Minute)

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupConnectionRoutes(app, connectionService)
	handlers.SetupTournamentRoutes(app, tournamentService, participantService)
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupDiscussionRoutes(app, discussionService)
	handlers.SetupSocialRoutes(app, socialService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   "tournament-social-system",
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Session sweeper running (every 15m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
