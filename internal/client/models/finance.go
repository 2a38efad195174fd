package models

import (
	"encoding/json"
	"net/url"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User *User `json:"user"`
	TokenPair
}

// Expense mirrors the server record. Dates stay strings: server rows carry
// RFC3339 timestamps while offline placeholders carry whatever the user typed.
type Expense struct {
	ID             int64  `json:"id"`
	Amount         int64  `json:"amount"`
	OriginalAmount int64  `json:"originalAmount"`
	Currency       string `json:"currency"`
	ExchangeRate   string `json:"exchangeRate,omitempty"`
	Description    string `json:"description"`
	Date           string `json:"date"`
	Category       string `json:"category"`
	Type           string `json:"type"`
	IsRecurring    bool   `json:"isRecurring,omitempty"`
	RecurringID    *int64 `json:"recurringId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// Day returns the YYYY-MM-DD part of Date.
func (e Expense) Day() string {
	return day(e.Date)
}

type NewExpense struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

type ExpensePatch struct {
	Amount      *int64  `json:"amount,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
	Type        *string `json:"type,omitempty"`
}

type ExpenseFilter struct {
	Start    string
	End      string
	Category string
}

// Query renders the filter as a query string (with leading "?"), or "" when
// empty. Keys are sorted so equal filters give equal cache keys.
func (f ExpenseFilter) Query() string {
	v := url.Values{}
	if f.Start != "" {
		v.Set("startDate", f.Start)
	}
	if f.End != "" {
		v.Set("endDate", f.End)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

type Stats struct {
	TotalIncome   int64 `json:"totalIncome"`
	TotalExpense  int64 `json:"totalExpense"`
	Balance       int64 `json:"balance"`
	MonthlyIncome int64 `json:"monthlyIncome"`
}

type RecurringExpense struct {
	ID          int64  `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	NextDueDate string `json:"nextDueDate"`
}

func (r RecurringExpense) NextDue() string {
	return day(r.NextDueDate)
}

type NewRecurring struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	NextDueDate string `json:"nextDueDate"`
}

type Invoice struct {
	ID            int64           `json:"id"`
	FileName      string          `json:"fileName"`
	ContentType   string          `json:"contentType,omitempty"`
	Status        string          `json:"status"`
	ProcessedData json.RawMessage `json:"processedData,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

type InvoiceData struct {
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Currency    string `json:"currency,omitempty"`
}

type ProcessResult struct {
	Success bool         `json:"success"`
	Data    *InvoiceData `json:"data"`
	Expense *Expense     `json:"expense,omitempty"`
}

type Settings struct {
	BaseCurrency string `json:"baseCurrency"`
}

func day(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
