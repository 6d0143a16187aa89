package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"tgdocs/docs"
	"tgdocs/internal/config"
	"tgdocs/internal/database"
	"tgdocs/internal/database/migration"
	"tgdocs/internal/dedup"
	"tgdocs/internal/events"
	handlers "tgdocs/internal/http/handler"
	"tgdocs/internal/http/middleware"
	"tgdocs/internal/otel"
	"tgdocs/internal/repository/postgres"
	"tgdocs/internal/service"
	"tgdocs/internal/storage"
	"tgdocs/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

// @title Telegram Document Archive API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", slog.String("error", err.Error()))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(cfg.Telegram, logger)
	if err != nil {
		return err
	}
	var files telegram.FileGetter = bot
	if cfg.Telegram.FileCacheSize > 0 {
		files = telegram.NewFileCache(bot, cfg.Telegram.FileCacheSize, time.Duration(cfg.Telegram.FileCacheTTLSec)*time.Second)
	}

	var (
		deduper dedup.Deduper
		checks  []handlers.Pinger
	)
	if cfg.Redis.Addr != "" {
		r := dedup.NewRedis(cfg.Redis)
		defer r.Close()
		deduper = r
		checks = append(checks, r)
	}

	publisher, err := newPublisher(cfg.AMQP, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	docRepo := postgres.NewDocumentPostgres(db)
	archiveSvc := service.NewArchiveService(objStore, docRepo, publisher, service.Options{
		FetchTimeout: time.Duration(cfg.Telegram.GetFileTimeoutSec) * time.Second,
		Logger:       logger,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, archiveSvc, handlers.WebhookDeps{
		Bot:    files,
		Dedup:  deduper,
		Secret: cfg.Telegram.WebhookSecret,
		Logger: logger,
	}, checks...)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", ":"+cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func newPublisher(cfg config.AMQPConfig, logger *slog.Logger) (events.Publisher, error) {
	if cfg.URL == "" {
		return events.Nop{}, nil
	}
	return events.NewRabbitMQ(cfg, logger)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}))
}
