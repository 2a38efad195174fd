package models

import (
	"encoding/json"
	"time"
)

const (
	InvoicePending   = "pending"
	InvoiceProcessed = "processed"
	InvoiceFailed    = "failed"
)

type Invoice struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	FileURL       string          `json:"fileUrl"`
	FileName      string          `json:"fileName"`
	ContentType   string          `json:"contentType"`
	ProcessedData json.RawMessage `json:"processedData,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// InvoiceData is what the extractor reads off an invoice image.
type InvoiceData struct {
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Currency    string `json:"currency,omitempty"`
}
