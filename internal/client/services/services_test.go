package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/cache"
	"github.com/dmitrijs2005/fintrack/internal/client/db"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/queue"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a small in-memory fintrack server.
type fakeAPI struct {
	mu       sync.Mutex
	expenses []models.Expense
	invoices []models.Invoice
	settings models.Settings
	nextID   int64
	fail     atomic.Bool
	onCreate func()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.fail.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "down"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method + " " + r.URL.Path {
	case "POST /api/register":
		var c models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		writeJSON(w, http.StatusCreated, models.User{ID: 2, Username: c.Username})
	case "POST /api/login":
		var c models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":         models.User{ID: 1, Username: c.Username},
			"accessToken":  "acc",
			"refreshToken": "ref",
		})
	case "POST /api/logout":
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/user":
		writeJSON(w, http.StatusOK, models.User{ID: 1, Username: "ann", CreatedAt: "2024-01-01T00:00:00Z"})
	case "GET /api/expenses":
		cat := r.URL.Query().Get("category")
		out := []models.Expense{}
		for _, e := range f.expenses {
			if cat == "" || e.Category == cat {
				out = append(out, e)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case "POST /api/expenses":
		var in models.NewExpense
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Description == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Description is required", "field": "description"})
			return
		}
		if f.onCreate != nil {
			f.onCreate()
		}
		f.nextID++
		e := models.Expense{
			ID: f.nextID, Amount: in.Amount, OriginalAmount: in.Amount, Currency: in.Currency,
			Description: in.Description, Date: in.Date, Category: in.Category, Type: in.Type,
		}
		f.expenses = append([]models.Expense{e}, f.expenses...)
		writeJSON(w, http.StatusCreated, e)
	case "GET /api/stats":
		var s models.Stats
		for _, e := range f.expenses {
			if e.Type == "income" {
				s.TotalIncome += e.Amount
			} else {
				s.TotalExpense += e.Amount
			}
		}
		s.Balance = s.TotalIncome - s.TotalExpense
		writeJSON(w, http.StatusOK, s)
	case "GET /api/settings":
		writeJSON(w, http.StatusOK, f.settings)
	case "PATCH /api/settings":
		_ = json.NewDecoder(r.Body).Decode(&f.settings)
		writeJSON(w, http.StatusOK, f.settings)
	case "GET /api/recurring":
		writeJSON(w, http.StatusOK, []models.RecurringExpense{})
	case "POST /api/recurring":
		var in models.NewRecurring
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		writeJSON(w, http.StatusCreated, models.RecurringExpense{ID: f.nextID, Amount: in.Amount, Currency: in.Currency, Description: in.Description, Category: in.Category, Frequency: in.Frequency, NextDueDate: in.NextDueDate})
	case "GET /api/invoices":
		writeJSON(w, http.StatusOK, f.invoices)
	case "POST /api/invoices/upload":
		file, h, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "File is required", "field": "file"})
			return
		}
		_, _ = io.Copy(io.Discard, file)
		f.nextID++
		inv := models.Invoice{ID: f.nextID, FileName: h.Filename, ContentType: h.Header.Get("Content-Type"), Status: "pending"}
		f.invoices = append([]models.Invoice{inv}, f.invoices...)
		writeJSON(w, http.StatusCreated, inv)
	default:
		if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/invoices/") {
			writeJSON(w, http.StatusOK, models.ProcessResult{
				Success: true,
				Data:    &models.InvoiceData{Amount: 1250, Description: "Taxi", Category: "Transport", Type: "expense"},
			})
			return
		}
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) seed(es ...models.Expense) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range es {
		f.nextID++
		e.ID = f.nextID
		f.expenses = append([]models.Expense{e}, f.expenses...)
	}
}

type switchMonitor struct{ offline atomic.Bool }

func (m *switchMonitor) Online() bool { return !m.offline.Load() }

type env struct {
	api     *fakeAPI
	mon     *switchMonitor
	queue   *queue.Manager
	cache   *cache.Cache
	meta    metadata.Repository
	req     *transport.Requester
	session *transport.Session
	deps    Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	api := &fakeAPI{settings: models.Settings{BaseCurrency: "USD"}}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	sqlDB, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	meta := metadata.NewSQLiteRepository(sqlDB)
	q := queue.NewManager(queue.NewMetadataStore(meta, queue.QueueKey), queue.NewMetadataStore(meta, queue.DeadLetterKey))
	c := cache.New(meta, time.Hour)
	mon := &switchMonitor{}
	session := &transport.Session{}
	session.Start(models.User{ID: 1, Username: "ann"}, models.TokenPair{AccessToken: "acc", RefreshToken: "ref"})
	req := transport.NewRequester(ts.URL, ts.Client(), session, mon, q, logging.Discard())

	return &env{
		api: api, mon: mon, queue: q, cache: c, meta: meta, req: req, session: session,
		deps: Deps{
			API: req, Session: session, Queue: q, Cache: c, Meta: meta,
			Timeout: 2 * time.Second, Logger: logging.Discard(),
		},
	}
}
