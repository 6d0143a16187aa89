package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// TelegramSecretHeader carries the secret_token given to setWebhook.
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret rejects requests whose secret header does not match secret.
// An empty secret disables the check.
func WebhookSecret(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	want := []byte(secret)
	return func(c *fiber.Ctx) error {
		if subtle.ConstantTimeCompare([]byte(c.Get(TelegramSecretHeader)), want) != 1 {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}
