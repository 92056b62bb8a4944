// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/config"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clinicdesk/internal/server/rest"
	"github.com/dmitrijs2005/clinicdesk/internal/server/services"
	"github.com/dmitrijs2005/clinicdesk/internal/server/storage"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/clinicdesk/internal/server/grpc"
)

const startupTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.Server
	health *gs.HealthServer
}

// NewApp opens storage, applies migrations and builds the HTTP and gRPC
// health servers. The caller must Run the app to release the database.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	openCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	dialect := c.Dialect()
	db, err := storage.Open(openCtx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := auth.NewTokenIssuer(c.SecretKey, c.TokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	router := rest.NewRouter(rest.Deps{
		Users:       services.NewUserService(db, rm, hasher, tokens),
		Patients:    services.NewPatientService(db, rm),
		Dashboard:   services.NewDashboardService(db, rm),
		Tokens:      tokens,
		DB:          db,
		Logger:      logger,
		DBTimeout:   c.DBTimeout,
		CORSOrigins: c.CORSOrigins,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewServer(c.HTTPAddr, router, logger),
		health: gs.NewHealthServer(c.GRPCHealthAddr, logger, db.PingContext, 0),
	}, nil
}

// initSignalHandler cancels ctx on SIGINT, SIGTERM or SIGQUIT. The returned
// channel is closed once the handler has unsubscribed, which happens when
// ctx is done.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	return watchSignals(ctx, cancelFunc, sigs, func() { signal.Stop(sigs) })
}

func watchSignals(ctx context.Context, cancelFunc context.CancelFunc, sigs <-chan os.Signal, stop func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stop()
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
	return done
}

// Run serves until a termination signal arrives, ctx is cancelled or a
// server fails. It returns the first server error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageMode, "http", app.config.HTTPAddr)

	signalsDone := app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		errOnce.Do(func() { firstErr = err })
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			fail(fmt.Errorf("grpc health server: %w", err))
		}
	}()

	go func() {
		select {
		case <-app.http.Started():
			app.health.SetServing(true)
		case <-ctx.Done():
		}
	}()

	wg.Wait()
	cancelFunc()
	<-signalsDone

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.WithoutCancel(ctx), "db close error", "error", err)
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")

	return firstErr
}
