package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"

	"github.com/eventboard/eventboard/internal/auth"
	"github.com/eventboard/eventboard/internal/config"
	"github.com/eventboard/eventboard/internal/handler"
	"github.com/eventboard/eventboard/internal/store"
	"github.com/eventboard/eventboard/views"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := setupLogger(cfg.Env)

	logger.Info("starting eventboard", "env", cfg.Env, "address", cfg.HTTPServer.Address)

	db, err := store.Open(cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(context.Background(), db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	users := store.NewUsers(db)
	events := store.NewEvents(db)

	authLogger := auth.NewSlogLogger(logger)

	provider := auth.NewUserProvider(users).WithLogger(authLogger)

	tokenService := auth.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		authLogger,
	)

	// Fail at boot if the signing key cannot round-trip a token rather than
	// on the first login.
	if err := tokenService.SelfCheck(); err != nil {
		logger.Error("token service self check failed", "error", err)
		os.Exit(1)
	}

	auther := auth.NewAuthenticator(provider, cfg).
		WithLogger(authLogger).
		WithTokenService(tokenService)

	routeAuth, err := auth.NewHTTPAuthenticator(auther, tokenService, cfg)
	if err != nil {
		logger.Error("failed to build route authenticator", "error", err)
		os.Exit(1)
	}
	routeAuth.WithLogger(authLogger)

	engine := django.NewFileSystem(http.FS(views.FS), ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	app.Use(handler.RequestLogger(logger))

	web := handler.New(cfg, logger, auther, routeAuth, provider, users, events, db)
	web.Register(app)

	go func() {
		if err := app.Listen(cfg.HTTPServer.Address); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	waitExitSignal()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func waitExitSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sigs
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return logger
}
