// Package server wires configuration, storage and services together and runs
// the HTTP API, the gRPC health endpoint and the background scheduler until
// the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/httpapi"
	"github.com/dmitrijs2005/fintrack/internal/server/objectstore"
	"github.com/dmitrijs2005/fintrack/internal/server/rates"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/scheduler"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/dmitrijs2005/fintrack/internal/server/vision"

	gs "github.com/dmitrijs2005/fintrack/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	http      *httpapi.Server
	health    *gs.HealthServer
	scheduler *scheduler.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	converter := rates.NewConverter(rates.NewClient(c.RatesBaseURL, c.RatesCacheTTL, httpClient, logger))
	extractor := vision.NewClient(c.VisionBaseURL, c.VisionAPIKey, c.VisionModel, httpClient)

	us := services.NewUserService(db, m, c)
	ss := services.NewSettingsService(db, m)
	es := services.NewExpenseService(db, m, converter, logger)
	rs := services.NewRecurringService(db, m, es, logger)
	is := services.NewInvoiceService(db, m, store, extractor, es, logger)

	sched, err := scheduler.New(c.RecurringSchedule, rs, us, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := httpapi.NewServer(c.EndpointAddrHTTP, httpapi.Services{
		Users:     us,
		Settings:  ss,
		Expenses:  es,
		Recurring: rs,
		Invoices:  is,
	}, httpapi.Options{
		MaxUploadBytes: c.MaxUploadBytes,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
	}, logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		http:      api,
		health:    gs.NewHealthServer(c.EndpointAddrGRPC, logger),
		scheduler: sched,
	}, nil
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

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.scheduler.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
