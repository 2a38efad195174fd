package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	data  map[string][]byte
	types map[string]string
}

func (m *memObjects) Put(_ context.Context, key, ct string, data []byte) error {
	m.data[key] = data
	m.types[key] = ct
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) ([]byte, string, error) {
	d, ok := m.data[key]
	if !ok {
		return nil, "", common.ErrorNotFound
	}
	return d, m.types[key], nil
}

func (m *memObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://store/" + key, nil
}

type stubExtractor struct {
	out     *models.InvoiceData
	err     error
	gotType string
}

func (s *stubExtractor) Extract(_ context.Context, ct string, _ []byte) (*models.InvoiceData, error) {
	s.gotType = ct
	return s.out, s.err
}

func newInvoiceService(t *testing.T, ex *stubExtractor) (*InvoiceService, *memDB, *memObjects) {
	t.Helper()
	db := txDB(t)
	mem := newMemDB()
	store := &memObjects{data: map[string][]byte{}, types: map[string]string{}}
	exp := NewExpenseService(db, memManager{mem}, &fakeConverter{rates: map[string]string{"EUR>USD": "1.1"}}, logging.Discard())
	svc := NewInvoiceService(db, memManager{mem}, store, ex, exp, logging.Discard())
	svc.now = func() time.Time { return time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC) }
	return svc, mem, store
}

func TestInvoiceService_Upload(t *testing.T) {
	svc, mem, store := newInvoiceService(t, &stubExtractor{})

	inv, err := svc.Upload(context.Background(), 1, "r.png", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.Regexp(t, `^users/1/2024/05/03/`, inv.FileURL)
	assert.Equal(t, []byte("png"), store.data[inv.FileURL])
	assert.Len(t, mem.invoices, 1)

	_, err = svc.Upload(context.Background(), 1, "empty", "text/plain", nil)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestInvoiceService_ProcessSuccess(t *testing.T) {
	ex := &stubExtractor{out: &models.InvoiceData{
		Amount: 2000, Date: "2024-05-02T10:00:00Z", Description: "Groceries", Category: "Food", Type: "expense", Currency: "eur",
	}}
	svc, mem, _ := newInvoiceService(t, ex)
	ctx := context.Background()
	inv, err := svc.Upload(ctx, 1, "r.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)

	res, err := svc.Process(ctx, 1, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", ex.gotType)
	assert.Equal(t, models.InvoiceProcessed, mem.invoices[inv.ID].Status)
	assert.JSONEq(t, `{"amount":2000,"date":"2024-05-02T10:00:00Z","description":"Groceries","category":"Food","type":"expense","currency":"eur"}`,
		string(mem.invoices[inv.ID].ProcessedData))

	require.NotNil(t, res.Expense)
	assert.Equal(t, int64(2200), res.Expense.Amount)
	assert.Equal(t, "EUR", res.Expense.Currency)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), res.Expense.Date)
}

func TestInvoiceService_ProcessWithoutAmountBooksNothing(t *testing.T) {
	ex := &stubExtractor{out: &models.InvoiceData{Description: "Unreadable total"}}
	svc, mem, _ := newInvoiceService(t, ex)
	inv, err := svc.Upload(context.Background(), 1, "r.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)

	res, err := svc.Process(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Expense)
	assert.Empty(t, mem.expenses)
	assert.Equal(t, models.InvoiceProcessed, mem.invoices[inv.ID].Status)
}

func TestInvoiceService_ProcessDefaults(t *testing.T) {
	ex := &stubExtractor{out: &models.InvoiceData{Amount: 300, Description: "Coffee", Currency: "???"}}
	svc, _, _ := newInvoiceService(t, ex)
	inv, err := svc.Upload(context.Background(), 1, "r.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)

	res, err := svc.Process(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Expense)
	assert.Equal(t, "USD", res.Expense.Currency)
	assert.Equal(t, "Other", res.Expense.Category)
	assert.Equal(t, models.TypeExpense, res.Expense.Type)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), res.Expense.Date)
}

func TestInvoiceService_ProcessFailure(t *testing.T) {
	svc, mem, _ := newInvoiceService(t, &stubExtractor{err: errors.New("model timeout")})
	inv, err := svc.Upload(context.Background(), 1, "r.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), 1, inv.ID)
	assert.ErrorIs(t, err, ErrProcessingFailed)
	assert.Equal(t, models.InvoiceFailed, mem.invoices[inv.ID].Status)
}

func TestInvoiceService_ProcessNotConfigured(t *testing.T) {
	svc, mem, _ := newInvoiceService(t, &stubExtractor{err: vision.ErrNotConfigured})
	inv, err := svc.Upload(context.Background(), 1, "r.jpg", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), 1, inv.ID)
	assert.ErrorIs(t, err, vision.ErrNotConfigured)
	assert.Equal(t, models.InvoicePending, mem.invoices[inv.ID].Status)
}

func TestInvoiceService_ProcessMissing(t *testing.T) {
	svc, _, _ := newInvoiceService(t, &stubExtractor{})
	_, err := svc.Process(context.Background(), 1, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInvoiceService_ListAndFileURL(t *testing.T) {
	svc, _, _ := newInvoiceService(t, &stubExtractor{})
	ctx := context.Background()
	a, err := svc.Upload(ctx, 1, "a", "image/png", []byte("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, 1, "b", "image/png", []byte("b"))
	require.NoError(t, err)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].FileName)

	url, err := svc.FileURL(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://store/"+a.FileURL, url)

	_, err = svc.FileURL(ctx, 2, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
