package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/config"
	"github.com/abhishekmmb18-lang/Enigma/internal/delivery/http"
	"github.com/abhishekmmb18-lang/Enigma/internal/logger"
	"github.com/abhishekmmb18-lang/Enigma/internal/metrics"
	"github.com/abhishekmmb18-lang/Enigma/internal/repository/postgres"
	"github.com/abhishekmmb18-lang/Enigma/internal/repository/redisstore"
	"github.com/abhishekmmb18-lang/Enigma/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "vehicle-telemetry")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Dependency Injection: Repositories
	var repo service.EventRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Warn("could not connect to database, running on the in-memory log", zap.Error(err))
		} else {
			defer db.Close()
			pg := postgres.NewPostgresRepository(db)
			if err := pg.Migrate(ctx); err != nil {
				zl.Fatal("schema migration failed", zap.Error(err))
			}
			repo = pg
			zl.Info("connected to PostgreSQL")
		}
	}
	if repo == nil {
		repo = postgres.NewMemoryRepository()
	}

	var publisher service.IncidentPublisher
	if cfg.RedisAddr != "" {
		pub, err := redisstore.NewIncidentPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Warn("redis unavailable, incident fan-out disabled", zap.Error(err))
		} else {
			defer pub.Close()
			publisher = pub
			zl.Info("publishing incidents to redis", zap.String("channel", redisstore.IncidentChannel))
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tuning := cfg.Tuning

	// Dependency Injection: Services
	store := service.NewTelemetryStore(time.Now(), tuning.DrowsinessStaleAfter)
	eventLog := service.NewEventLog(repo, publisher, zl, m)
	profiles := service.NewProfileService(repo)
	mailbox := service.NewCommandMailbox(tuning.SOSTTL, profiles, zl, m)
	classifier := service.NewClassifier(service.Thresholds{
		VibrationCritical:   tuning.VibrationCritical,
		VibrationMajor:      tuning.VibrationMajor,
		VibrationRawDivisor: tuning.VibrationRawDivisor,
		VibrationMax:        tuning.VibrationMax,
		AlcoholModerate:     tuning.AlcoholModerate,
		AlcoholHigh:         tuning.AlcoholHigh,
	})
	telemetry := service.NewTelemetryService(store, classifier, eventLog, mailbox, service.TelemetryOptions{
		CriticalDebounce: tuning.CriticalDebounce,
		LogThrottle:      tuning.LogThrottle,
	}, zl, m)
	status := service.NewStatusService(telemetry, eventLog, mailbox, tuning.HazardWindow, zl)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Vehicle Telemetry API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, http.NewHandler(telemetry, status, profiles, repo, zl), prometheus.DefaultGatherer)

	// Graceful shutdown
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited gracefully")
}
