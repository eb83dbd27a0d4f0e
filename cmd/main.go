package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"githubPushRelay/internal/config"
	"githubPushRelay/internal/events"
	"githubPushRelay/internal/handlers"
	"githubPushRelay/internal/logger"
	"githubPushRelay/internal/push"
	"githubPushRelay/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Lg.Sync()

	if !cfg.StrictSignatures {
		logger.Lg.Warn("STRICT_SIGNATURES=false: unsigned webhooks will be accepted; never run like this in production")
	}

	registry, closeRegistry, err := store.Open(context.Background(), cfg, logger.Lg)
	if err != nil {
		logger.Lg.Fatal("device registry", zap.Error(err))
	}

	gateway, err := push.NewAPNsFromConfig(cfg)
	if err != nil {
		logger.Lg.Fatal("apns client", zap.Error(err))
	}
	dispatcher := push.NewDispatcher(gateway, cfg.PushTimeout, cfg.DispatchConcurrency, logger.Lg)

	tracked := events.ParseExtensions(cfg.TrackedExtensions)
	h := handlers.NewHTTP(registry, dispatcher, handlers.Options{
		Secret:       cfg.WebhookSecret,
		Strict:       cfg.StrictSignatures,
		Tracked:      tracked,
		DispatchWait: cfg.DispatchWait,
	}, logger.Lg)
	app := handlers.NewApp(h, cfg.BodyLimit)

	logger.Lg.Info("relay starting",
		zap.String("port", cfg.Port),
		zap.String("registry", cfg.RegistryBackend),
		zap.String("apns_environment", cfg.APNsEnvironment),
		zap.Bool("token_auth", cfg.UsesTokenAuth()),
		zap.Strings("tracked_extensions", tracked.List()),
	)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Lg.Info("Server stopped", zap.Error(err))
		}
	}()

	GracefulShutdown(app, closeRegistry)
	logger.Lg.Info("Shutdown complete")
}

func GracefulShutdown(app *fiber.App, closeRegistry func() error) {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	logger.Lg.Info("Shutdown sig rcv")
	if err := app.Shutdown(); err != nil {
		logger.Lg.Error("Server shutdown error", zap.Error(err))
	}
	if err := closeRegistry(); err != nil {
		logger.Lg.Error("registry close error", zap.Error(err))
	}
}
