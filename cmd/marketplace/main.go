package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/auth"
	"github.com/vasiliy-maslov/course-marketplace/internal/config"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	"github.com/vasiliy-maslov/course-marketplace/internal/db"
	marketplaceHttp "github.com/vasiliy-maslov/course-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/course-marketplace/internal/logger"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
	"github.com/vasiliy-maslov/course-marketplace/internal/storage"
)

const usage = `usage:
  marketplace              run the HTTP server
  marketplace migrate up   apply all migrations
  marketplace migrate down roll back all migrations`

func main() {
	cfg, err := config.Load(".env", os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	if args := os.Args[1:]; len(args) > 0 {
		direction, err := parseMigrateArgs(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		if err := db.Migrate(cfg.Postgres.DSN(), cfg.Postgres.MigrationsPath, direction); err != nil {
			log.Fatal().Err(err).Str("direction", string(direction)).Msg("Migration failed")
		}
		return
	}

	if err := runServer(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func parseMigrateArgs(args []string) (db.Direction, error) {
	if args[0] != "migrate" || len(args) != 2 {
		return "", fmt.Errorf("unknown command: %v", args)
	}

	direction := db.Direction(args[1])
	if direction != db.Up && direction != db.Down {
		return "", fmt.Errorf("unknown migrate direction %q", args[1])
	}
	return direction, nil
}

func runServer(cfg *config.Config) error {
	log.Info().Str("env", cfg.App.Env).Msg("Starting course marketplace...")

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(cfg.Postgres.DSN(), cfg.Postgres.MigrationsPath, db.Up); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	ctx := context.Background()

	dbPool, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	hasher, err := auth.NewPasswordHasher(cfg.App.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(cfg.JWT.UserSecret, cfg.JWT.AdminSecret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	userRepository := account.NewRepository(dbPool.Pool, account.KindUser)
	adminRepository := account.NewRepository(dbPool.Pool, account.KindAdmin)
	courseRepository := course.NewRepository(dbPool.Pool)
	purchaseRepository := purchase.NewRepository(dbPool.Pool)

	deps := marketplaceHttp.RouterDeps{
		Users:              account.NewService(userRepository, hasher, account.KindUser),
		Admins:             account.NewService(adminRepository, hasher, account.KindAdmin),
		Courses:            course.NewService(courseRepository),
		Purchases:          purchase.NewService(purchaseRepository),
		Tokens:             tokens,
		DB:                 dbPool,
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
		ShowErrorDetail:    cfg.IsDevelopment(),
	}

	if cfg.S3.Enabled() {
		signer, err := storage.NewS3Signer(ctx, cfg.S3)
		if err != nil {
			return err
		}
		deps.Images = signer
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Course image uploads enabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      marketplaceHttp.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("could not listen on %s: %w", cfg.App.Port, err)
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("Course marketplace stopped gracefully")
	return nil
}
