package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"antgiftbox/internal/config"
	"antgiftbox/internal/database"
	"antgiftbox/internal/handlers"
	"antgiftbox/internal/repository"
	"antgiftbox/internal/security"
	"antgiftbox/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.OpenWithConfig(cfg)
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

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	parentRepo := repository.NewParentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	childRepo := repository.NewChildRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	vaultRepo := repository.NewVaultRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, parentRepo, emailService, cfg.SessionDuration)
	socialService := service.NewSocialService(authService, cfg)
	directoryService := service.NewDirectoryService(groupRepo, parentRepo, cfg.InviteCodeLength, cfg.InviteCodeAttempts)
	pairingService := service.NewPairingService(requestRepo, groupRepo, childRepo, parentRepo, emailService)
	childService := service.NewChildService(childRepo)
	childWatcher := service.NewChildWatcher(childRepo, 5*time.Second)
	vaultService := service.NewVaultService(vaultRepo, childRepo)
	preferenceService := service.NewPreferenceService(prefRepo)

	// Initialize handlers
	limiter := security.NewRateLimiter(30, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, socialService)
	parentHandler := handlers.NewParentHandler(directoryService, childService, parentRepo)
	pairingHandler := handlers.NewPairingHandler(pairingService, preferenceService)
	childHandler := handlers.NewChildHandler(childService, childWatcher, preferenceService)
	vaultHandler := handlers.NewVaultHandler(vaultService)
	deviceHandler := handlers.NewDeviceHandler(preferenceService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes
	mux.HandleFunc("POST /auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /auth/google", middleware.RateLimit(authHandler.GoogleSignIn))
	mux.HandleFunc("POST /auth/apple", middleware.RateLimit(authHandler.AppleSignIn))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /auth/flow-status", middleware.RequireAuth(authHandler.FlowStatus))
	mux.HandleFunc("POST /auth/phone-verified", middleware.RequireAuth(authHandler.MarkPhoneVerified))
	mux.HandleFunc("POST /auth/onboarding-completed", middleware.RequireAuth(authHandler.CompleteOnboarding))

	// Parent routes
	mux.HandleFunc("GET /parent/profile", middleware.RequireAuth(parentHandler.Profile))
	mux.HandleFunc("PUT /parent/profile", middleware.RequireAuth(parentHandler.UpdateProfile))
	mux.HandleFunc("PUT /parent/subscription", middleware.RequireAuth(parentHandler.UpdateSubscription))
	mux.HandleFunc("GET /parent/family-code", middleware.RequireAuth(parentHandler.FamilyCode))
	mux.HandleFunc("GET /parent/group", middleware.RequireAuth(parentHandler.FamilyGroup))
	mux.HandleFunc("PUT /parent/group/settings", middleware.RequireAuth(parentHandler.UpdateGroupSettings))
	mux.HandleFunc("GET /parent/children", middleware.RequireAuth(parentHandler.Children))
	mux.HandleFunc("PUT /parent/children/{id}", middleware.RequireAuth(childHandler.UpdateChild))
	mux.HandleFunc("GET /parent/link-requests", middleware.RequireAuth(pairingHandler.ListPending))
	mux.HandleFunc("POST /parent/link-requests/{id}/approve", middleware.RequireAuth(pairingHandler.Approve))
	mux.HandleFunc("POST /parent/link-requests/{id}/reject", middleware.RequireAuth(pairingHandler.Reject))

	// Parent vault routes
	mux.HandleFunc("GET /parent/vault", middleware.RequireAuth(vaultHandler.List))
	mux.HandleFunc("POST /parent/vault", middleware.RequireAuth(vaultHandler.Add))
	mux.HandleFunc("PUT /parent/vault/{id}/assign", middleware.RequireAuth(vaultHandler.Assign))
	mux.HandleFunc("POST /parent/vault/{id}/deliver", middleware.RequireAuth(vaultHandler.Deliver))

	// Child device routes
	mux.HandleFunc("POST /child/link-requests", middleware.RateLimit(middleware.RequireDevice(pairingHandler.CreateRequest)))
	mux.HandleFunc("GET /child/link-requests/{id}", pairingHandler.GetRequest)
	mux.HandleFunc("GET /child/profiles/{id}", childHandler.GetProfile)
	mux.HandleFunc("GET /child/profiles/{id}/watch", childHandler.WatchProfile)
	mux.HandleFunc("GET /child/session/valid", middleware.RequireDevice(childHandler.SessionValid))

	// Device preference routes
	mux.HandleFunc("GET /device/preferences", middleware.RequireDevice(deviceHandler.GetPreferences))
	mux.HandleFunc("GET /device/preferences/{key}", middleware.RequireDevice(deviceHandler.GetPreference))
	mux.HandleFunc("PUT /device/preferences/{key}", middleware.RequireDevice(deviceHandler.SetPreference))
	mux.HandleFunc("DELETE /device/preferences/{key}", middleware.RequireDevice(deviceHandler.ClearPreference))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server. WriteTimeout stays 0 so the profile watch stream is
	// not cut off.
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start background maintenance jobs
	scheduler := service.NewScheduler(authService, pairingService, 24*time.Hour)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

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
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
