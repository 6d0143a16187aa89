package handler

import (
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"tgdocs/internal/dedup"
	"tgdocs/internal/http/middleware"
	"tgdocs/internal/service"
	"tgdocs/internal/telegram"
)

// WebhookDeps groups what the Telegram webhook needs besides the archive service.
type WebhookDeps struct {
	Bot    telegram.FileGetter
	Dedup  dedup.Deduper // optional
	Secret string
	Logger *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ArchiveService, wh WebhookDeps, checks ...Pinger) {
	app.Get("/health", HealthCheck(db, checks...))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics())

	app.Post("/webhook", middleware.WebhookSecret(wh.Secret), Webhook(svc, wh.Bot, wh.Dedup, wh.Logger))

	app.Get("/documents", ListDocuments(svc))
	app.Get("/documents/:id", GetDocument(svc))
	app.Get("/documents/:id/download", DownloadDocument(svc))
	app.Get("/documents/:id/content", DocumentContent(svc))
	app.Delete("/documents/:id", DeleteDocument(svc))
}
