package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kodi-rentals/app/config"
	"kodi-rentals/app/database"
	"kodi-rentals/app/routes"
	"kodi-rentals/app/routes/common"
	"kodi-rentals/app/services"
	"kodi-rentals/app/services/mailer"
	"kodi-rentals/app/services/mpesa"
	"kodi-rentals/app/services/sms"
	"kodi-rentals/app/services/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	appLogger := config.NewLogger(cfg.Logging)
	slog.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	// Set global time zone; month boundaries and Daraja timestamps depend on it
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		appLogger.Warn("failed to load time zone, falling back to UTC+3", "timezone", cfg.Timezone, "error", err)
		time.Local = time.FixedZone("EAT", 3*60*60)
	} else {
		time.Local = loc
	}
	appLogger.Info("application time zone set", "timezone", time.Local.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDB(cfg.DB, appLogger)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	// Run database migrations
	if err := database.RunMigrations(db, appLogger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	settings := services.NewSettingsProvider(db, cfg.Schedule.SettingsCacheTTL)
	mail, err := mailer.New(settings, cfg.SMTP, appLogger)
	if err != nil {
		return err
	}
	texts := sms.New(settings, cfg.SMS, appLogger)
	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init document storage: %w", err)
	}
	if cfg.CallbackURL() == "" {
		appLogger.Warn("PUBLIC_BASE_URL is not set; M-Pesa needs a callback URL in settings")
	}
	gateway := mpesa.NewGateway(settings, cfg.CallbackURL())

	// Start background scheduler
	dispatcher := services.NewReminderDispatcher(db, mail, texts, appLogger)
	scheduler := services.NewScheduler(db, dispatcher, cfg.Schedule.ReminderInterval, appLogger)
	schedulerDone := scheduler.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Kodi Rentals",
		ErrorHandler: common.ErrorHandler(appLogger),
		BodyLimit:    12 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	routes.Setup(app, &common.Deps{
		DB:        db,
		Config:    cfg,
		Logger:    appLogger,
		Settings:  settings,
		Mailer:    mail,
		SMS:       texts,
		Mpesa:     gateway,
		Reminders: scheduler,
		Storage:   blobs,
	})

	listenErr := make(chan error, 1)
	go func() {
		appLogger.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-listenErr:
		stop()
		<-schedulerDone
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("graceful shutdown failed", "error", err)
	}
	<-schedulerDone
	return nil
}
