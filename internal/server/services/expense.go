package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/rates"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// Converter turns minor units of one currency into another.
type Converter interface {
	Convert(ctx context.Context, minor int64, from, to string) (rates.Conversion, error)
}

type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	converter   Converter
	log         logging.Logger
	now         func() time.Time
}

func NewExpenseService(db *sql.DB, m repomanager.RepositoryManager, c Converter, log logging.Logger) *ExpenseService {
	return &ExpenseService{
		db:          db,
		repomanager: m,
		converter:   c,
		log:         log.With("module", "expenses"),
		now:         time.Now,
	}
}

func (s *ExpenseService) List(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	return s.repomanager.Expenses(s.db).List(ctx, userID, f)
}

// Create stores a new record. When the currency differs from the user's base
// currency the amount is converted with exactly one rate lookup; otherwise no
// lookup happens and the amount is stored as given.
func (s *ExpenseService) Create(ctx context.Context, userID int64, in models.NewExpense) (*models.Expense, error) {
	date, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	e := &models.Expense{
		UserID:         userID,
		OriginalAmount: in.Amount,
		Currency:       in.Currency,
		Description:    in.Description,
		Date:           date,
		Category:       in.Category,
		Type:           in.Type,
		IsRecurring:    in.IsRecurring,
		RecurringID:    in.RecurringID,
	}
	return s.create(ctx, s.db, e)
}

func (s *ExpenseService) create(ctx context.Context, db dbx.DBTX, e *models.Expense) (*models.Expense, error) {
	if err := s.convert(ctx, db, e); err != nil {
		return nil, err
	}
	created, err := s.repomanager.Expenses(db).Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "expense created", "user_id", e.UserID, "id", created.ID, "currency", e.Currency, "rate", e.ExchangeRate)
	return created, nil
}

// convert fills Amount and ExchangeRate from OriginalAmount and Currency.
func (s *ExpenseService) convert(ctx context.Context, db dbx.DBTX, e *models.Expense) error {
	base, err := baseCurrency(ctx, s.repomanager, db, e.UserID)
	if err != nil {
		return err
	}
	conv, err := s.converter.Convert(ctx, e.OriginalAmount, e.Currency, base)
	if err != nil {
		return fmt.Errorf("convert %s->%s: %w", e.Currency, base, err)
	}
	e.Amount = conv.Amount
	e.ExchangeRate = conv.Rate
	return nil
}

// Update applies a partial update. Amount or currency changes trigger a new
// conversion against the current base currency.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, p models.ExpensePatch) (*models.Expense, error) {
	var out *models.Expense
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Expenses(tx)
		e, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		reconvert, err := p.Apply(e)
		if err != nil {
			return err
		}
		if reconvert {
			if err := s.convert(ctx, tx, e); err != nil {
				return err
			}
		}
		out, err = repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Expenses(s.db).Delete(ctx, userID, id)
}

func (s *ExpenseService) Stats(ctx context.Context, userID int64) (*models.Stats, error) {
	st, err := s.repomanager.Expenses(s.db).Stats(ctx, userID, timex.StartOfMonth(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return st, nil
}
