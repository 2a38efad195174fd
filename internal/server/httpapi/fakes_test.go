package httpapi

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

const validToken = "good-token"

type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	authErr     error
	lastCreds   models.Credentials
}

func (f *fakeUsers) Register(_ context.Context, c models.Credentials) (*models.User, error) {
	f.lastCreds = c
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 7, Username: c.Username}, nil
}

func (f *fakeUsers) Login(_ context.Context, c models.Credentials) (*models.User, *models.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &models.User{ID: 7, Username: c.Username}, &models.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*models.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &models.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil
}

func (f *fakeUsers) Logout(context.Context, string) error { return nil }

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Username: "alice"}, nil
}

func (f *fakeUsers) Authenticate(token string) (int64, error) {
	if f.authErr != nil {
		return 0, f.authErr
	}
	if token != validToken {
		return 0, common.ErrInvalidToken
	}
	return 7, nil
}

type fakeSettings struct{}

func (fakeSettings) Get(_ context.Context, uid int64) (*models.Settings, error) {
	return &models.Settings{UserID: uid, BaseCurrency: "USD"}, nil
}

func (fakeSettings) Update(_ context.Context, uid int64, p models.SettingsPatch) (*models.Settings, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &models.Settings{UserID: uid, BaseCurrency: p.BaseCurrency}, nil
}

type fakeExpenses struct {
	gotUser   int64
	gotFilter models.ExpenseFilter
	created   *models.NewExpense
	updateErr error
	deleted   int64
}

func (f *fakeExpenses) List(_ context.Context, uid int64, fl models.ExpenseFilter) ([]models.Expense, error) {
	f.gotUser = uid
	f.gotFilter = fl
	return []models.Expense{{ID: 1, UserID: uid, Amount: 100, Currency: "USD"}}, nil
}

func (f *fakeExpenses) Create(_ context.Context, uid int64, in models.NewExpense) (*models.Expense, error) {
	if _, err := in.Normalize(); err != nil {
		return nil, err
	}
	f.created = &in
	return &models.Expense{ID: 2, UserID: uid, Amount: in.Amount, OriginalAmount: in.Amount, Currency: in.Currency}, nil
}

func (f *fakeExpenses) Update(_ context.Context, uid, id int64, p models.ExpensePatch) (*models.Expense, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Expense{ID: id, UserID: uid}, nil
}

func (f *fakeExpenses) Delete(_ context.Context, uid, id int64) error {
	f.deleted = id
	return nil
}

func (f *fakeExpenses) Stats(context.Context, int64) (*models.Stats, error) {
	return &models.Stats{TotalIncome: 500, TotalExpense: 200, Balance: 300}, nil
}

type fakeRecurring struct {
	panics bool
}

func (f *fakeRecurring) List(context.Context, int64) ([]models.RecurringExpense, error) {
	if f.panics {
		panic("boom")
	}
	return []models.RecurringExpense{}, nil
}

func (f *fakeRecurring) Create(_ context.Context, uid int64, in models.NewRecurring) (*models.RecurringExpense, error) {
	return &models.RecurringExpense{ID: 3, UserID: uid, Description: in.Description, Active: true}, nil
}

func (f *fakeRecurring) Delete(context.Context, int64, int64) error { return common.ErrorNotFound }

type fakeInvoices struct {
	uploadName string
	uploadType string
	uploadData []byte
	processErr error
}

func (f *fakeInvoices) Upload(_ context.Context, uid int64, name, ct string, data []byte) (*models.Invoice, error) {
	f.uploadName, f.uploadType, f.uploadData = name, ct, data
	return &models.Invoice{ID: 4, UserID: uid, FileName: name, Status: models.InvoicePending}, nil
}

func (f *fakeInvoices) List(context.Context, int64) ([]models.Invoice, error) {
	return []models.Invoice{}, nil
}

func (f *fakeInvoices) FileURL(_ context.Context, _, id int64) (string, error) {
	return "http://store/file", nil
}

func (f *fakeInvoices) Process(context.Context, int64, int64) (*services.ProcessResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &services.ProcessResult{Data: &models.InvoiceData{Amount: 1250, Description: "Lunch"}}, nil
}
