package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/config"
	controller "github.com/boscogd/waitlist/controllers"
	"github.com/boscogd/waitlist/middleware"
	"github.com/boscogd/waitlist/utils"
	"github.com/boscogd/waitlist/worker"
)

// SetupRoutes wires every handler group: public waitlist/feedback endpoints,
// cron-triggered campaign endpoints, and the admin surface.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg config.Config, mailer utils.Mailer, campaignWorker *worker.CampaignWorker) {
	sendPause := time.Duration(cfg.SendPauseMS) * time.Millisecond

	waitlistController := controller.NewWaitlistController(db, mailer, log.New(os.Stdout, "WAITLIST: ", log.LstdFlags))
	feedbackController := controller.NewFeedbackController(db, mailer, cfg.AdminEmail, cfg.SiteURL, log.New(os.Stdout, "FEEDBACK: ", log.LstdFlags))
	draftController := controller.NewDraftController(db, log.New(os.Stdout, "DRAFT: ", log.LstdFlags))
	sendController := controller.NewSendController(db, mailer, campaignWorker, log.New(os.Stdout, "SEND: ", log.LstdFlags))
	templateController := controller.NewTemplateController(db, log.New(os.Stdout, "TEMPLATE: ", log.LstdFlags))
	launchController := controller.NewLaunchController(db, mailer, log.New(os.Stdout, "LAUNCH: ", log.LstdFlags), cfg.AppURL, sendPause)
	campaignController := controller.NewCampaignController(db, campaignWorker, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags))
	generateController := controller.NewGenerateController(db, cfg.OpenAIAPIKey, log.New(os.Stdout, "GENERATE: ", log.LstdFlags))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public endpoints, rate limited per IP
	public := api.Group("", middleware.PublicRateLimiter(cfg.RateLimitPublic, cfg.Redis))
	public.Post("/waitlist", waitlistController.JoinWaitlist)
	public.Get("/waitlist", waitlistController.CheckWaitlist)
	public.Post("/waitlist/unsubscribe", waitlistController.Unsubscribe)
	public.Post("/feedback", feedbackController.SubmitFeedback)

	// Status peek stays unauthenticated so the admin UI can poll it
	api.Get("/scheduled-emails", campaignController.ScheduledStatus)

	api.Post("/notify-launch", middleware.AdminOnly(cfg.AdminSecretKey), launchController.NotifyLaunch)

	// Campaign processing, reachable by the cron secret or the admin key
	cron := api.Group("", middleware.CronOrAdmin(cfg.CronSecret, cfg.AdminSecretKey))
	cron.Post("/campaign/run", campaignController.RunPass)
	cron.Get("/drip-campaign", campaignController.SequenceStats)
	cron.Post("/drip-campaign", campaignController.ProcessSequence)
	cron.Post("/scheduled-emails", campaignController.ProcessScheduled)

	// Admin surface
	admin := api.Group("/admin", middleware.AdminOnly(cfg.AdminSecretKey))
	admin.Get("/emails", draftController.ListDrafts)
	admin.Post("/emails", draftController.CreateDraft)
	admin.Get("/emails/:id", draftController.GetDraft)
	admin.Put("/emails/:id", draftController.UpdateDraft)
	admin.Delete("/emails/:id", draftController.DeleteDraft)
	admin.Post("/emails/:id/test", sendController.TestSend)
	admin.Post("/emails/:id/send", sendController.SendDraft)

	admin.Get("/templates", templateController.ListTemplates)
	admin.Post("/templates", templateController.CreateTemplate)

	admin.Get("/feedback", feedbackController.ListFeedback)
	admin.Post("/generate", generateController.GenerateDraft)
}
