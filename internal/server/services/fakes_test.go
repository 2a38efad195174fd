package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/rates"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/invoices"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/recurring"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/settings"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// txDB gives services a real *sql.DB for dbx.WithTx; the in-memory
// repositories below never touch it.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type memDB struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]*models.User
	tokens    map[string]*models.RefreshToken
	settings  map[int64]*models.Settings
	expenses  map[int64]*models.Expense
	recurring map[int64]*models.RecurringExpense
	invoices  map[int64]*models.Invoice

	expenseCreateErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[int64]*models.User{},
		tokens:    map[string]*models.RefreshToken{},
		settings:  map[int64]*models.Settings{},
		expenses:  map[int64]*models.Expense{},
		recurring: map[int64]*models.RecurringExpense{},
		invoices:  map[int64]*models.Invoice{},
	}
}

func (m *memDB) next() int64 { m.seq++; return m.seq }

type memManager struct{ *memDB }

func (m memManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m memManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.memDB} }
func (m memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m.memDB} }
func (m memManager) Settings(dbx.DBTX) settings.Repository           { return memSettings{m.memDB} }
func (m memManager) Expenses(dbx.DBTX) expenses.Repository           { return memExpenses{m.memDB} }
func (m memManager) Recurring(dbx.DBTX) recurring.Repository         { return memRecurring{m.memDB} }
func (m memManager) Invoices(dbx.DBTX) invoices.Repository           { return memInvoices{m.memDB} }

type memUsers struct{ *memDB }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Username == u.Username {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.next()
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Username == name {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.users[id]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

type memTokens struct{ *memDB }

func (r memTokens) Create(_ context.Context, userID int64, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &models.RefreshToken{ID: r.next(), UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.tokens[token]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r memTokens) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, v := range r.tokens {
		if v.Expires.Before(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type memSettings struct{ *memDB }

func (r memSettings) Get(_ context.Context, userID int64) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.settings[userID]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r memSettings) Upsert(_ context.Context, userID int64, code string) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.Settings{UserID: userID, BaseCurrency: code, UpdatedAt: time.Now()}
	r.settings[userID] = s
	cp := *s
	return &cp, nil
}

type memExpenses struct{ *memDB }

func (r memExpenses) List(_ context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Expense{}
	for _, e := range r.expenses {
		if e.UserID != userID || (f.Category != "" && e.Category != f.Category) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r memExpenses) Get(_ context.Context, userID, id int64) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.expenses[id]; ok && e.UserID == userID {
		cp := *e
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r memExpenses) Create(_ context.Context, e *models.Expense) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expenseCreateErr != nil {
		return nil, r.expenseCreateErr
	}
	e.ID = r.next()
	cp := *e
	r.expenses[e.ID] = &cp
	return e, nil
}

func (r memExpenses) Update(_ context.Context, e *models.Expense) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.expenses[e.ID]; !ok || x.UserID != e.UserID {
		return nil, common.ErrorNotFound
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return e, nil
}

func (r memExpenses) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.expenses[id]; !ok || x.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r memExpenses) Stats(_ context.Context, userID int64, monthStart time.Time) (*models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.Stats{}
	for _, e := range r.expenses {
		if e.UserID != userID {
			continue
		}
		if e.Type == models.TypeIncome {
			s.TotalIncome += e.Amount
			if !e.Date.Before(monthStart) {
				s.MonthlyIncome += e.Amount
			}
		} else {
			s.TotalExpense += e.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s, nil
}

type memRecurring struct{ *memDB }

func (r memRecurring) ListActive(_ context.Context, userID int64) ([]models.RecurringExpense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.RecurringExpense{}
	for _, x := range r.recurring {
		if x.UserID == userID && x.Active {
			out = append(out, *x)
		}
	}
	return out, nil
}

func (r memRecurring) Create(_ context.Context, x *models.RecurringExpense) (*models.RecurringExpense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x.ID = r.next()
	x.Active = true
	cp := *x
	r.recurring[x.ID] = &cp
	return x, nil
}

func (r memRecurring) Deactivate(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.recurring[id]
	if !ok || x.UserID != userID || !x.Active {
		return common.ErrorNotFound
	}
	x.Active = false
	return nil
}

func (r memRecurring) Due(_ context.Context, now time.Time) ([]models.RecurringExpense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.RecurringExpense{}
	for _, x := range r.recurring {
		if x.Active && !x.NextDueDate.After(now) {
			out = append(out, *x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRecurring) SetNextDueDate(_ context.Context, id int64, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recurring[id].NextDueDate = next
	return nil
}

type memInvoices struct{ *memDB }

func (r memInvoices) Create(_ context.Context, inv *models.Invoice) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = r.next()
	inv.CreatedAt = time.Now()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return inv, nil
}

func (r memInvoices) List(_ context.Context, userID int64) ([]models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Invoice{}
	for _, x := range r.invoices {
		if x.UserID == userID {
			out = append(out, *x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memInvoices) Get(_ context.Context, userID, id int64) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.invoices[id]; ok && x.UserID == userID {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r memInvoices) SetStatus(_ context.Context, id int64, status string, data json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[id].Status = status
	if data != nil {
		r.invoices[id].ProcessedData = data
	}
	return nil
}

// fakeConverter applies fixed rates and counts lookups.
type fakeConverter struct {
	calls int
	rates map[string]string
	err   error
}

func (c *fakeConverter) Convert(ctx context.Context, minor int64, from, to string) (rates.Conversion, error) {
	if from == to {
		return rates.Conversion{Amount: minor, Rate: "1.0"}, nil
	}
	c.calls++
	if c.err != nil {
		return rates.Conversion{}, c.err
	}
	return rates.NewConverter(staticRates(c.rates)).Convert(ctx, minor, from, to)
}

// staticRates keys are "FROM>TO".
type staticRates map[string]string

func (s staticRates) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	v, ok := s[from+">"+to]
	if !ok {
		return decimal.Zero, common.ErrRateUnavailable
	}
	return decimal.RequireFromString(v), nil
}
