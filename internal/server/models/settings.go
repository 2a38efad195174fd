package models

import (
	"time"

	"github.com/dmitrijs2005/fintrack/internal/currency"
)

type Settings struct {
	UserID       int64     `json:"userId"`
	BaseCurrency string    `json:"baseCurrency"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SettingsPatch struct {
	BaseCurrency string `json:"baseCurrency"`
}

func (p SettingsPatch) Validate() error {
	if !currency.Supported(p.BaseCurrency) {
		return NewValidationError("baseCurrency", "Unsupported currency")
	}
	return nil
}
