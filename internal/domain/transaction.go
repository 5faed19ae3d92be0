package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction Model
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"` // Amount of the transaction
	Description string          `gorm:"size:255;not null" json:"description"`      // Free text description
	UserID      uint            `gorm:"index;not null" json:"userId"`              // Owner of the transaction
	CategoryID  uint            `gorm:"not null" json:"categoryId"`                // Category reference, not enforced
	Date        time.Time       `gorm:"not null" json:"date"`                      // Date the transaction happened
	CreatedAt   time.Time       `json:"createdAt"`                                 // Creation timestamp
	UpdatedAt   time.Time       `json:"updatedAt"`                                 // Last update timestamp
}

// DateLayout is the short form accepted for transaction dates
const DateLayout = "2006-01-02"

// ParseDate accepts an RFC3339 timestamp or a plain YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}
