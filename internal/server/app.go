// Package server initializes and runs the portfolio API server.
// It opens the database, applies migrations, wires the services, and
// starts the HTTP listener with graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finmetrics/portfolio-api/internal/logging"
	"github.com/finmetrics/portfolio-api/internal/server/config"
	"github.com/finmetrics/portfolio-api/internal/server/httpapi"
	"github.com/finmetrics/portfolio-api/internal/server/marketdata"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
	"github.com/finmetrics/portfolio-api/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(cfg.LogLevel)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	portfolioService := services.NewPortfolioService(db, rm)
	securityService := services.NewSecurityService(db, rm)
	metricService := services.NewMetricService(db, rm)
	quoteClient := marketdata.NewClient(cfg.MarketDataURL, cfg.MarketDataAPIKey)

	srv := httpapi.NewServer(cfg.EndpointAddr, httpapi.Services{
		Users:      userService,
		Portfolios: portfolioService,
		Securities: securityService,
		Metrics:    metricService,
		Quotes:     quoteClient,
	}, logger)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
