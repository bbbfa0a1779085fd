package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"aqar-chatbot/config"
	"aqar-chatbot/handlers"
	"aqar-chatbot/middleware"
	"aqar-chatbot/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB for the turn log and knowledge base
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(ctx)

	services.InitServices(db, cfg.DatabaseName)

	// Initialize the property inventory database
	if err := services.InitMySQL(cfg); err != nil {
		slog.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}

	services.InitLLM(cfg)
	services.InitRAG(cfg)
	services.InitChat(cfg)

	// Drop sessions idle for over 24 hours
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				services.GetSessionStore().CleanupStale(24 * time.Hour)
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173, http://localhost:3000, http://localhost:5174",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// API routes
	api := app.Group("/api")
	api.Post("/chat", handlers.HandleChat)
	api.Post("/clear-session", handlers.HandleClearSession)
	api.Get("/history/:sessionID", handlers.HandleSessionHistory)
	api.Get("/test-db", handlers.HandleTestDB)

	// Admin knowledge base routes (protected)
	admin := app.Group("/admin", middleware.AdminAuth(cfg.AdminTokenHash))
	admin.Post("/knowledge", handlers.HandleKnowledgeUpload)
	admin.Get("/knowledge", handlers.HandleKnowledgeList)

	app.Get("/health", handlers.HandleHealth)

	slog.Info("Starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
