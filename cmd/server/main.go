package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Simplici0/cvp/internal/config"
	"github.com/Simplici0/cvp/internal/db"
	"github.com/Simplici0/cvp/internal/defaults"
	"github.com/Simplici0/cvp/internal/logger"
	"github.com/Simplici0/cvp/internal/migrations"
	"github.com/Simplici0/cvp/internal/seed"
)

type server struct {
	cfg       config.Config
	log       zerolog.Logger
	auth      *authService
	defaults  *defaults.Store
	validate  *validator.Validate
	templates map[string]*template.Template
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	for _, warning := range cfg.Warnings() {
		log.Warn().Str("env", cfg.AppEnv).Msg(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database, log); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	log.Info().Int("inserts", stats.Inserts).Msg("seed completed")

	srv, err := newServer(cfg, log, database)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newServer(cfg config.Config, log zerolog.Logger, database *sql.DB) (*server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &server{
		cfg:       cfg,
		log:       log,
		auth:      newAuthService(database, cfg.SessionSecret, !cfg.IsDev()),
		defaults:  defaults.NewStore(database),
		validate:  newValidator(),
		templates: templates,
	}, nil
}
