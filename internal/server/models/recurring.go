package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

type RecurringExpense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Frequency   string    `json:"frequency"`
	NextDueDate time.Time `json:"nextDueDate"`
	Active      bool      `json:"active"`
}

// Advance returns the due date following t for the given frequency.
func Advance(t time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

type NewRecurring struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	NextDueDate string `json:"nextDueDate"`
}

func (n *NewRecurring) Normalize() (time.Time, error) {
	if n.Currency == "" {
		n.Currency = currency.DefaultCode
	}
	n.Currency = strings.ToUpper(n.Currency)
	if n.Amount <= 0 {
		return time.Time{}, NewValidationError("amount", "Amount must be positive")
	}
	if strings.TrimSpace(n.Description) == "" {
		return time.Time{}, NewValidationError("description", "Description is required")
	}
	if strings.TrimSpace(n.Category) == "" {
		return time.Time{}, NewValidationError("category", "Category is required")
	}
	switch n.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return time.Time{}, NewValidationError("frequency", "Frequency must be daily, weekly, monthly or yearly")
	}
	if !currency.Supported(n.Currency) {
		return time.Time{}, NewValidationError("currency", "Unsupported currency")
	}
	d, err := timex.ParseDate(n.NextDueDate)
	if err != nil {
		return time.Time{}, NewValidationError("nextDueDate", "Invalid date")
	}
	return d, nil
}
