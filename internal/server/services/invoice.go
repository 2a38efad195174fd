package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/objectstore"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/vision"
)

// ErrProcessingFailed is returned when the extractor could not read an invoice.
var ErrProcessingFailed = errors.New("failed to process invoice")

type InvoiceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objectstore.Store
	extractor   vision.Extractor
	expenses    *ExpenseService
	log         logging.Logger
	now         func() time.Time
}

func NewInvoiceService(db *sql.DB, m repomanager.RepositoryManager, store objectstore.Store,
	extractor vision.Extractor, expenses *ExpenseService, log logging.Logger) *InvoiceService {
	return &InvoiceService{
		db:          db,
		repomanager: m,
		store:       store,
		extractor:   extractor,
		expenses:    expenses,
		log:         log.With("module", "invoices"),
		now:         time.Now,
	}
}

func (s *InvoiceService) Upload(ctx context.Context, userID int64, fileName, contentType string, data []byte) (*models.Invoice, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("file", "No file uploaded")
	}
	key := objectstore.InvoiceKey(userID, s.now())
	if err := s.store.Put(ctx, key, contentType, data); err != nil {
		return nil, err
	}
	return s.repomanager.Invoices(s.db).Create(ctx, &models.Invoice{
		UserID:      userID,
		FileURL:     key,
		FileName:    fileName,
		ContentType: contentType,
		Status:      models.InvoicePending,
	})
}

func (s *InvoiceService) List(ctx context.Context, userID int64) ([]models.Invoice, error) {
	return s.repomanager.Invoices(s.db).List(ctx, userID)
}

// FileURL returns a short-lived download link for the invoice file.
func (s *InvoiceService) FileURL(ctx context.Context, userID, id int64) (string, error) {
	inv, err := s.repomanager.Invoices(s.db).Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, inv.FileURL, 15*time.Minute)
}

// ProcessResult is the extracted data plus the expense booked from it, if any.
type ProcessResult struct {
	Data    *models.InvoiceData `json:"data"`
	Expense *models.Expense     `json:"expense,omitempty"`
}

// Process runs the invoice through the extractor. On success the invoice is
// marked processed and, when amount and description were found, an expense is
// booked. Any extraction failure marks it failed and yields ErrProcessingFailed.
// vision.ErrNotConfigured is returned untouched and leaves the invoice as is.
func (s *InvoiceService) Process(ctx context.Context, userID, id int64) (*ProcessResult, error) {
	repo := s.repomanager.Invoices(s.db)
	inv, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, contentType, err := s.store.Get(ctx, inv.FileURL)
	if err != nil {
		return nil, s.fail(ctx, inv, err)
	}
	if contentType == "" {
		contentType = inv.ContentType
	}

	extracted, err := s.extractor.Extract(ctx, contentType, data)
	if err != nil {
		if errors.Is(err, vision.ErrNotConfigured) {
			return nil, err
		}
		return nil, s.fail(ctx, inv, err)
	}

	raw, err := json.Marshal(extracted)
	if err != nil {
		return nil, s.fail(ctx, inv, err)
	}
	if err := repo.SetStatus(ctx, inv.ID, models.InvoiceProcessed, raw); err != nil {
		return nil, err
	}

	res := &ProcessResult{Data: extracted}
	if extracted.Amount != 0 && strings.TrimSpace(extracted.Description) != "" {
		exp, err := s.expenses.Create(ctx, userID, s.toNewExpense(extracted))
		if err != nil {
			s.log.Warn(ctx, "invoice processed but expense not created", "invoice_id", inv.ID, "error", err)
		} else {
			res.Expense = exp
		}
	}
	return res, nil
}

func (s *InvoiceService) toNewExpense(d *models.InvoiceData) models.NewExpense {
	n := models.NewExpense{
		Amount:      d.Amount,
		Currency:    strings.ToUpper(d.Currency),
		Description: d.Description,
		Date:        d.Date,
		Category:    d.Category,
		Type:        d.Type,
	}
	if !currency.Supported(n.Currency) {
		n.Currency = currency.DefaultCode
	}
	if n.Category == "" {
		n.Category = "Other"
	}
	if n.Type != models.TypeIncome {
		n.Type = models.TypeExpense
	}
	if len(n.Date) >= 10 {
		n.Date = n.Date[:10]
	} else {
		n.Date = s.now().Format(time.DateOnly)
	}
	return n
}

func (s *InvoiceService) fail(ctx context.Context, inv *models.Invoice, cause error) error {
	s.log.Error(ctx, "invoice processing failed", "invoice_id", inv.ID, "error", cause)
	if err := s.repomanager.Invoices(s.db).SetStatus(ctx, inv.ID, models.InvoiceFailed, nil); err != nil {
		s.log.Error(ctx, "mark invoice failed", "invoice_id", inv.ID, "error", err)
	}
	return fmt.Errorf("%w: %v", ErrProcessingFailed, cause)
}
