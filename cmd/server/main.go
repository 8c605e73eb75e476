package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epidash/backend/internal/config"
	"github.com/epidash/backend/internal/delivery/http"
	"github.com/epidash/backend/internal/repository/postgres"
	"github.com/epidash/backend/internal/service"
)

func main() {
	// Configuration
	cfg := config.Load()

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = p.Ping(ctx)
		}
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			if p != nil {
				p.Close()
			}
		} else {
			pool = p
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Repositories
	var fetchLog service.FetchLogRepository
	if pool != nil {
		pgRepo := postgres.NewPostgresRepository(pool)
		if err := pgRepo.Migrate(ctx); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		fetchLog = pgRepo
	} else {
		log.Println("Keeping fetch diagnostics in memory")
		fetchLog = postgres.NewMockRepository()
	}

	// Dependency Injection: Services
	epiClient := service.NewEpiClient(cfg.EpiAPIURL, slogger)
	sessions := service.NewSessionStore(epiClient, fetchLog, slogger)
	maintenance := service.NewMaintenance(fetchLog, sessions, cfg.FetchLogRetention, cfg.SessionTTL, slogger)
	if err := maintenance.Start(cfg.MaintenanceSchedule); err != nil {
		log.Fatalf("Maintenance setup failed: %v", err)
	}

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Epidash API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * service.RequestTimeout,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	handler := http.NewHandler(sessions, epiClient, epiClient, fetchLog)
	http.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (analytics API %s)", cfg.Port, epiClient.BaseURL())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	maintenance.Stop()
	sessions.WaitBackground()
	log.Println("Server exited gracefully")
}
