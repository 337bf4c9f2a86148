package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gym-checkin-backend/config"
	"gym-checkin-backend/internal/api"
	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/db"
	"gym-checkin-backend/internal/notification"
	"gym-checkin-backend/internal/store"
	"gym-checkin-backend/internal/usecase"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "gym-backend ", log.LstdFlags)

	// A missing .env is fine; deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalf("failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	created, err := db.SeedAdmin(ctx, appStore.Users(), cfg.Admin)
	if err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}
	if created {
		logger.Printf("admin user %s created", cfg.Admin.Email)
	}

	sessions, err := auth.NewSessionStore(ctx, cfg.Sessions)
	if err != nil {
		logger.Fatalf("failed to initialize %s session store: %v", cfg.Sessions.Backend, err)
	}
	tokens := auth.NewTokenService(cfg.JWT, sessions)

	// Push notifications are optional
	var notifier api.Notifier
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys are not configured; validation notifications are disabled")
	}

	// Initialize router
	router := api.NewRouter(api.Options{
		Server:       cfg.Server,
		CookieSecure: cfg.JWT.CookieSecure,
		UseCases: usecase.New(appStore, usecase.Options{
			Location: cfg.Server.Location,
		}),
		Subscriptions: appStore.Subscriptions(),
		Tokens:        tokens,
		Notifier:      notifier,
		Webpush:       webpushOptions,
		Logger:        logger,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
