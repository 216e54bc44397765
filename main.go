package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/boscogd/waitlist/config"
	"github.com/boscogd/waitlist/middleware"
	"github.com/boscogd/waitlist/routes"
	"github.com/boscogd/waitlist/utils"
	"github.com/boscogd/waitlist/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize mailer from the configured provider
	mailer, err := utils.NewMailer(utils.MailerConfig{
		Provider:     config.AppConfig.EmailProvider,
		ResendAPIKey: config.AppConfig.ResendAPIKey,
		FromEmail:    config.AppConfig.FromEmail,
		SMTPHost:     config.AppConfig.SMTPHost,
		SMTPPort:     config.AppConfig.SMTPPort,
		SMTPUsername: config.AppConfig.SMTPUsername,
		SMTPPassword: config.AppConfig.SMTPPassword,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize mailer: %v", err)
	}

	// Initialize and start the campaign worker
	sendPause := time.Duration(config.AppConfig.SendPauseMS) * time.Millisecond
	campaignWorker := worker.NewCampaignWorker(config.DB, mailer, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags), sendPause)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := campaignWorker.Start(ctx, config.AppConfig.CronSchedule); err != nil {
			logger.Printf("Campaign worker stopped: %v", err)
		}
	}()

	// Setup routes
	routes.SetupRoutes(app, config.DB, config.AppConfig, mailer, campaignWorker)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
