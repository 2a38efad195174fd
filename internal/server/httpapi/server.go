// Package httpapi exposes the REST API over gorilla/mux.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

type UserService interface {
	Register(ctx context.Context, c models.Credentials) (*models.User, error)
	Login(ctx context.Context, c models.Credentials) (*models.User, *models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	Authenticate(accessToken string) (int64, error)
}

type SettingsService interface {
	Get(ctx context.Context, userID int64) (*models.Settings, error)
	Update(ctx context.Context, userID int64, p models.SettingsPatch) (*models.Settings, error)
}

type ExpenseService interface {
	List(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error)
	Create(ctx context.Context, userID int64, in models.NewExpense) (*models.Expense, error)
	Update(ctx context.Context, userID, id int64, p models.ExpensePatch) (*models.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) (*models.Stats, error)
}

type RecurringService interface {
	List(ctx context.Context, userID int64) ([]models.RecurringExpense, error)
	Create(ctx context.Context, userID int64, in models.NewRecurring) (*models.RecurringExpense, error)
	Delete(ctx context.Context, userID, id int64) error
}

type InvoiceService interface {
	Upload(ctx context.Context, userID int64, fileName, contentType string, data []byte) (*models.Invoice, error)
	List(ctx context.Context, userID int64) ([]models.Invoice, error)
	FileURL(ctx context.Context, userID, id int64) (string, error)
	Process(ctx context.Context, userID, id int64) (*services.ProcessResult, error)
}

// Services bundles everything the handlers call into.
type Services struct {
	Users     UserService
	Settings  SettingsService
	Expenses  ExpenseService
	Recurring RecurringService
	Invoices  InvoiceService
}

type Options struct {
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	address string
	svc     Services
	opts    Options
	limiter *rate.Limiter
	logger  logging.Logger
}

func NewServer(address string, svc Services, opts Options, l logging.Logger) *Server {
	limit := rate.Inf
	if opts.RateLimitRPS > 0 {
		limit = rate.Limit(opts.RateLimitRPS)
	}
	return &Server{
		address: address,
		svc:     svc,
		opts:    opts,
		limiter: rate.NewLimiter(limit, opts.RateLimitBurst),
		logger:  l.With("module", "http_server"),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverPanic, s.logRequests, s.rateLimit)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh", s.refresh).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authenticate)

	protected.HandleFunc("/user", s.currentUser).Methods(http.MethodGet)

	protected.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	protected.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPatch)

	protected.HandleFunc("/expenses", s.listExpenses).Methods(http.MethodGet)
	protected.HandleFunc("/expenses", s.createExpense).Methods(http.MethodPost)
	protected.HandleFunc("/expenses/{id:[0-9]+}", s.updateExpense).Methods(http.MethodPut)
	protected.HandleFunc("/expenses/{id:[0-9]+}", s.deleteExpense).Methods(http.MethodDelete)
	protected.HandleFunc("/stats", s.stats).Methods(http.MethodGet)

	protected.HandleFunc("/recurring", s.listRecurring).Methods(http.MethodGet)
	protected.HandleFunc("/recurring", s.createRecurring).Methods(http.MethodPost)
	protected.HandleFunc("/recurring/{id:[0-9]+}", s.deleteRecurring).Methods(http.MethodDelete)

	protected.HandleFunc("/invoices", s.listInvoices).Methods(http.MethodGet)
	protected.HandleFunc("/invoices/upload", s.uploadInvoice).Methods(http.MethodPost)
	protected.HandleFunc("/invoices/{id:[0-9]+}/process", s.processInvoice).Methods(http.MethodPost)
	protected.HandleFunc("/invoices/{id:[0-9]+}/file", s.invoiceFile).Methods(http.MethodGet)

	return r
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
