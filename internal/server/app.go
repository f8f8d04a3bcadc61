// Package server wires the application together: configuration, logging,
// database, repositories, the session issuer with its background recorder,
// and the HTTP server. It also owns graceful shutdown ordering.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/addresses"
	"github.com/mkazmer/bookmart/internal/server/auth"
	"github.com/mkazmer/bookmart/internal/server/config"
	"github.com/mkazmer/bookmart/internal/server/httpapi"
	"github.com/mkazmer/bookmart/internal/server/repositories/repomanager"
	"github.com/mkazmer/bookmart/internal/server/sessions"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	recorder   *sessions.Recorder
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens := auth.NewTokenManager([]byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	sessionStore := rm.RefreshSessions(db)
	recorder := sessions.NewRecorder(sessionStore, cfg.RefreshTokenValidityDuration, cfg.SessionQueueSize, logger)
	issuer := sessions.NewIssuer(tokens, sessionStore, recorder, logger)

	addressService := addresses.NewService(db, rm, logger)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger,
		tokens, issuer, rm.Users(db), addressService)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		recorder:   recorder,
		httpServer: httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the recorder and the HTTP server and blocks until shutdown.
// Shutdown order matters: the HTTP server stops first, then the recorder
// drains its queue, and only then is the database closed, so every session
// record submitted before the last response lands.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.recorder.Run(recorderCtx)
	}()

	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err.Error())
	}

	stopRecorder()
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
