// Package server initializes and runs the account store server. It wires
// the postgres repository, the S3 snapshot archive and the HTTP API, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/server/archive"
	"github.com/discussions-app/core/internal/server/config"
	"github.com/discussions-app/core/internal/server/httpapi"
	"github.com/discussions-app/core/internal/server/services"
	"github.com/discussions-app/core/internal/server/shared/db"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *db.PostgresRepositoryManager
	service *services.AccountService
}

func NewApp(c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	archiver := archive.NewS3Archiver(c)
	service := services.NewAccountService(m.Accounts(), c, archiver, logger)

	return &App{config: c, logger: logger, manager: m, service: service}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.service, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting account store...")

	if err := app.manager.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, fmt.Sprintf("migration error: %v", err))
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
