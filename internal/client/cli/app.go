package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/cache"
	"github.com/dmitrijs2005/fintrack/internal/client/config"
	"github.com/dmitrijs2005/fintrack/internal/client/db"
	"github.com/dmitrijs2005/fintrack/internal/client/health"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
	"github.com/dmitrijs2005/fintrack/internal/client/queue"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/client/services"
	"github.com/dmitrijs2005/fintrack/internal/client/syncer"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

const cacheTTL = 24 * time.Hour

type authService interface {
	Register(ctx context.Context, username string, password []byte) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.User, error)
	CurrentUser() *models.User
	LastUsername(ctx context.Context) (string, error)
}

type expenseService interface {
	List(ctx context.Context, f models.ExpenseFilter) (services.Listing[models.Expense], error)
	Create(ctx context.Context, e models.NewExpense) (pending.Record[models.Expense], error)
	Update(ctx context.Context, id int64, p models.ExpensePatch) (*models.Expense, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (models.Stats, bool, error)
}

type recurringService interface {
	List(ctx context.Context) (services.Listing[models.RecurringExpense], error)
	Create(ctx context.Context, r models.NewRecurring) (pending.Record[models.RecurringExpense], error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type invoiceService interface {
	List(ctx context.Context) (services.Listing[models.Invoice], error)
	Upload(ctx context.Context, path string) (pending.Record[models.Invoice], error)
	Process(ctx context.Context, id int64) (*models.ProcessResult, error)
}

type settingsService interface {
	Get(ctx context.Context) (models.Settings, bool, error)
	SetBaseCurrency(ctx context.Context, code string) (models.Settings, bool, error)
}

type queueManager interface {
	Pending(ctx context.Context, userID int64) ([]models.QueuedMutation, error)
	Abandoned(ctx context.Context, userID int64) ([]models.QueuedMutation, error)
	Retry(ctx context.Context, userID int64, id string) error
	Discard(ctx context.Context, userID int64, id string) error
}

type App struct {
	config    *config.Config
	auth      authService
	expenses  expenseService
	recurring recurringService
	invoices  invoiceService
	settings  settingsService
	queue     queueManager
	cache     *cache.Cache
	watcher   *health.Watcher
	// sync replays the queue of the given user.
	sync    func(ctx context.Context, userID int64) (syncer.Report, error)
	closers []io.Closer
	reader  *bufio.Reader
	out     io.Writer
	logger  logging.Logger
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	sqlDB, err := db.Open(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	prober, err := health.NewGRPCProber(c.HealthAddr)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("health client: %w", err)
	}

	meta := metadata.NewSQLiteRepository(sqlDB)
	q := queue.NewManager(
		queue.NewMetadataStore(meta, queue.QueueKey),
		queue.NewMetadataStore(meta, queue.DeadLetterKey),
	)
	session := &transport.Session{}

	a := &App{
		config:  c,
		queue:   q,
		cache:   cache.New(meta, cacheTTL),
		closers: []io.Closer{prober, sqlDB},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		logger:  logger,
	}
	a.watcher = health.NewWatcher(prober, c.OnlineCheckInterval, a.onOnline, logger)

	requester := transport.NewRequester(c.ServerURL, &http.Client{Timeout: 30 * time.Second}, session, a.watcher, q, logger)
	processor := syncer.NewProcessor(q, c.MaxAttempts, logger)
	a.sync = func(ctx context.Context, userID int64) (syncer.Report, error) {
		return processor.Process(ctx, requester.Replay, &userID)
	}

	deps := services.Deps{
		API:     requester,
		Session: session,
		Queue:   q,
		Cache:   a.cache,
		Meta:    meta,
		Timeout: c.RequestTimeout,
		Logger:  logger,
	}
	a.auth = services.NewAuthService(deps)
	a.expenses = services.NewExpenseService(deps)
	a.recurring = services.NewRecurringService(deps)
	a.invoices = services.NewInvoiceService(deps)
	a.settings = services.NewSettingsService(deps)

	return a, nil
}

// Run starts the connectivity watcher and the REPL, and releases resources
// when the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.watcher.Check(ctx)
	go a.watcher.Run(ctx)

	a.Root(ctx)
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

// onOnline replays the signed-in user's queue and drops their cached reads
// so the next read refetches.
func (a *App) onOnline(ctx context.Context) {
	u := a.auth.CurrentUser()
	if u == nil {
		return
	}
	rep, err := a.sync(ctx, u.ID)
	if err != nil {
		a.logger.Error(ctx, "background sync failed", "error", err)
	} else if rep.Succeeded+rep.Failed > 0 {
		fmt.Fprintf(a.out, "\nBack online: %s\n", formatReport(rep))
	}
	if err := a.cache.Invalidate(ctx, cache.UserPrefix(u.ID)); err != nil {
		a.logger.Warn(ctx, "cache invalidation failed", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUser() != nil
}

func (a *App) userID() (int64, error) {
	u := a.auth.CurrentUser()
	if u == nil {
		return 0, services.ErrNotLoggedIn
	}
	return u.ID, nil
}

func (a *App) getStatus() string {
	s := ""
	if u := a.auth.CurrentUser(); u != nil {
		s = u.Username + " "
	}
	if a.watcher == nil || a.watcher.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root greets the user, offers a login and runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	a.logger.Info(ctx, "fintrack client started", "server", a.config.ServerURL)
	fmt.Fprintln(a.out, "Welcome to fintrack (type 'help' for commands)")

	if err := a.Login(ctx, nil); err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
