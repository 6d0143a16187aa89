package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"tgdocs/internal/dedup"
	"tgdocs/internal/http/middleware"
	"tgdocs/internal/model"
	"tgdocs/internal/service"
	"tgdocs/internal/telegram"
)

// webhookResult is the body returned to Telegram. Telegram only looks at the status code.
type webhookResult struct {
	Status   string          `json:"status"`
	Document *model.Document `json:"document,omitempty"`
}

// Webhook receives Telegram updates and archives any attached document.
// Updates without a document are acknowledged and ignored, as are documents
// missing a required id. dd may be nil.
// @Summary Telegram webhook
// @Tags telegram
// @Accept json
// @Produce json
// @Param X-Telegram-Bot-Api-Secret-Token header string false "webhook secret"
// @Success 200 {object} webhookResult
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /webhook [post]
func Webhook(svc service.ArchiveService, bot telegram.FileGetter, dd dedup.Deduper, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "webhook"))

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		log := logger.With(slog.String("request_id", middleware.RequestIDFromContext(ctx)))

		upd, err := telegram.DecodeUpdate(c.Body(), bot)
		if errors.Is(err, telegram.ErrMissingField) {
			// Well-formed JSON that Telegram will keep resending; acknowledge it.
			log.Warn("undecodable update", slog.String("error", err.Error()))
			return c.JSON(webhookResult{Status: "rejected"})
		}
		if err != nil || upd == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_UPDATE", "invalid update")
		}

		msg := upd.EffectiveMessage()
		if msg == nil || msg.Document == nil {
			return c.JSON(webhookResult{Status: "ignored"})
		}

		guard := dd
		if guard != nil {
			claimed, err := guard.Claim(ctx, upd.UpdateID)
			switch {
			case err != nil:
				// Archive is idempotent on file_unique_id, so carry on without the guard.
				log.Warn("dedup claim failed", slog.Int64("update_id", upd.UpdateID), slog.String("error", err.Error()))
				guard = nil
			case !claimed:
				return c.JSON(webhookResult{Status: "duplicate"})
			}
		}

		doc, err := svc.Archive(ctx, msg.Document, msg.Chat.ID)
		if err != nil {
			log.Error("archive failed",
				slog.Int64("update_id", upd.UpdateID),
				slog.String("file_unique_id", msg.Document.FileUniqueID),
				slog.String("error", err.Error()),
			)
			if permanent(err) {
				return c.JSON(webhookResult{Status: "rejected"})
			}
			if guard != nil {
				if relErr := guard.Release(ctx, upd.UpdateID); relErr != nil {
					log.Warn("dedup release failed", slog.Int64("update_id", upd.UpdateID), slog.String("error", relErr.Error()))
				}
			}
			// A non-2xx answer makes Telegram redeliver the update.
			return writeError(c, fiber.StatusBadGateway, "ARCHIVE_FAILED", "document could not be archived")
		}
		return c.JSON(webhookResult{Status: "archived", Document: doc})
	}
}

// permanent reports errors a redelivery cannot fix, such as a file over the
// Bot API download limit.
func permanent(err error) bool {
	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusBadRequest &&
			apiErr.Code < http.StatusInternalServerError &&
			apiErr.Code != http.StatusTooManyRequests
	}
	return errors.Is(err, telegram.ErrNoFilePath)
}
