package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Categories offered to users and to the invoice extractor. Expenses may
// carry any non-empty category.
var Categories = []string{"Food", "Transport", "Housing", "Utilities", "Entertainment", "Health", "Other"}

// Expense is a single income or expense record. Amount is in minor units of
// the owner's base currency at the time of writing; OriginalAmount is in
// minor units of Currency.
type Expense struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Amount         int64     `json:"amount"`
	OriginalAmount int64     `json:"originalAmount"`
	Currency       string    `json:"currency"`
	ExchangeRate   string    `json:"exchangeRate"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	Category       string    `json:"category"`
	Type           string    `json:"type"`
	IsRecurring    bool      `json:"isRecurring"`
	RecurringID    *int64    `json:"recurringId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ExpenseFilter struct {
	Start    *time.Time
	End      *time.Time
	Category string
}

// NewExpense is the create payload.
type NewExpense struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	IsRecurring bool   `json:"isRecurring"`
	RecurringID *int64 `json:"recurringId,omitempty"`
}

// Normalize applies defaults, validates and parses the date.
func (n *NewExpense) Normalize() (time.Time, error) {
	if n.Currency == "" {
		n.Currency = currency.DefaultCode
	}
	n.Currency = strings.ToUpper(n.Currency)
	if n.Type == "" {
		n.Type = TypeExpense
	}
	if strings.TrimSpace(n.Description) == "" {
		return time.Time{}, NewValidationError("description", "Description is required")
	}
	if strings.TrimSpace(n.Category) == "" {
		return time.Time{}, NewValidationError("category", "Category is required")
	}
	if err := validateType(n.Type); err != nil {
		return time.Time{}, err
	}
	if !currency.Supported(n.Currency) {
		return time.Time{}, NewValidationError("currency", "Unsupported currency")
	}
	if n.Date == "" {
		return time.Time{}, NewValidationError("date", "Date is required")
	}
	d, err := timex.ParseDate(n.Date)
	if err != nil {
		return time.Time{}, NewValidationError("date", "Invalid date")
	}
	return d, nil
}

// ExpensePatch is a partial update; nil fields are left as they are.
type ExpensePatch struct {
	Amount      *int64  `json:"amount,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// Apply validates p and copies it onto e. It reports whether the amount or
// currency changed, in which case the caller has to convert again.
func (p ExpensePatch) Apply(e *Expense) (reconvert bool, err error) {
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return false, NewValidationError("description", "Description is required")
		}
		e.Description = *p.Description
	}
	if p.Category != nil {
		if strings.TrimSpace(*p.Category) == "" {
			return false, NewValidationError("category", "Category is required")
		}
		e.Category = *p.Category
	}
	if p.Type != nil {
		if err := validateType(*p.Type); err != nil {
			return false, err
		}
		e.Type = *p.Type
	}
	if p.Date != nil {
		d, err := timex.ParseDate(*p.Date)
		if err != nil {
			return false, NewValidationError("date", "Invalid date")
		}
		e.Date = d
	}
	if p.Currency != nil {
		code := strings.ToUpper(*p.Currency)
		if !currency.Supported(code) {
			return false, NewValidationError("currency", "Unsupported currency")
		}
		reconvert = reconvert || code != e.Currency
		e.Currency = code
	}
	if p.Amount != nil {
		reconvert = reconvert || *p.Amount != e.OriginalAmount
		e.OriginalAmount = *p.Amount
	}
	return reconvert, nil
}

func validateType(t string) error {
	if t != TypeIncome && t != TypeExpense {
		return NewValidationError("type", "Type must be income or expense")
	}
	return nil
}

type Stats struct {
	TotalIncome   int64 `json:"totalIncome"`
	TotalExpense  int64 `json:"totalExpense"`
	Balance       int64 `json:"balance"`
	MonthlyIncome int64 `json:"monthlyIncome"`
}
