package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingoclash/internal/audio"
	"lingoclash/internal/auth"
	"lingoclash/internal/config"
	"lingoclash/internal/database"
	"lingoclash/internal/events"
	"lingoclash/internal/gateway"
	"lingoclash/internal/handlers"
	"lingoclash/internal/repository"
	"lingoclash/internal/security"
	"lingoclash/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Event bus shared by the services and the SSE bridge
	bus := events.NewBus()

	// Initialize repositories and core services
	progressRepo := repository.NewProgressRepository(db)
	progressService := service.NewProgressService(progressRepo, bus)

	// Authentication manager doubles as the token source for the
	// upstream learning API clients.
	authManager := auth.NewManager(cfg.SessionDuration)
	profileClient := gateway.NewProfileClient(cfg.APIBaseURL, authManager)
	quizClient := gateway.NewQuizClient(cfg.APIBaseURL, authManager)

	xpService := service.NewXPService(progressService, profileClient, bus)

	// Level-up notification emails (no-op unless SES is configured)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	unsubscribeEmails := emailService.NotifyLevelUps(bus, authManager)
	defer unsubscribeEmails()

	if err := os.MkdirAll(cfg.AudioPath, 0755); err != nil {
		log.Fatalf("Failed to create audio directory: %v", err)
	}
	ttsService := audio.NewTTSService(cfg.AudioPath, cfg.PracticeLanguage)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(authManager, xpService, bus, cfg.SessionDuration)
	xpHandler := handlers.NewXPHandler(progressService, xpService, bus)
	userHandler := handlers.NewUserHandler(profileClient, bus)
	quizHandler := handlers.NewQuizHandler(quizClient)
	eventsHandler := handlers.NewEventsHandler(bus)
	pronunciationHandler := handlers.NewPronunciationHandler(ttsService, cfg.AudioPath)

	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authManager, rateLimiter)

	// Setup routes
	mux := http.NewServeMux()

	// Session routes
	mux.HandleFunc("POST /api/session", middleware.RateLimit(sessionHandler.SignIn))
	mux.HandleFunc("DELETE /api/session", sessionHandler.SignOut)

	// Progress routes
	mux.HandleFunc("GET /api/xp/hud", xpHandler.HUD)
	mux.HandleFunc("POST /api/quiz/results", middleware.RequireAuth(xpHandler.Award))
	mux.HandleFunc("POST /api/xp/sync", middleware.RequireAuth(xpHandler.Sync))

	// Profile and live updates
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(userHandler.Profile))
	mux.HandleFunc("GET /api/events", eventsHandler.Stream)

	// Quiz proxy routes
	mux.HandleFunc("GET /api/quiz/sections", middleware.RequireAuth(quizHandler.Sections))
	mux.HandleFunc("GET /api/quiz/units/{unitId}", middleware.RequireAuth(quizHandler.Unit))
	mux.HandleFunc("POST /api/quiz/attempts", middleware.RequireAuth(quizHandler.SubmitAttempt))
	mux.HandleFunc("GET /api/quiz/attempts/{attemptId}", middleware.RequireAuth(quizHandler.Attempt))

	// Pronunciation audio
	mux.HandleFunc("GET /api/pronunciation/audio", middleware.RateLimit(pronunciationHandler.Audio))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
