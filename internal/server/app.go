// Package server wires the storefront together: configuration, logging,
// PostgreSQL, object storage, mail and the HTTP API. It also handles
// graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/config"
	"github.com/dmitrijs2005/herostore/internal/server/httpapi"
	"github.com/dmitrijs2005/herostore/internal/server/mailer"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/dmitrijs2005/herostore/internal/server/storage"
	"github.com/gin-gonic/gin"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// seams for tests
var (
	openDB         = sql.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newGateway     = func(ctx context.Context, c *config.Config) (storage.Gateway, error) {
		return storage.NewS3Gateway(ctx, c)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.Debug)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if !c.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB("pgx", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	gw, err := newGateway(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	sender := mailer.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.SMTPFrom)

	us, err := services.NewUserService(db, rm, sender, c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	hs := services.NewHeroService(db, rm, gw, logger)

	hsrv := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, hs, db, httpapi.Options{
		Debug:          c.Debug,
		AllowedOrigins: c.AllowedOrigins,
	})

	return &App{config: c, logger: logger, db: db, http: hsrv}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
