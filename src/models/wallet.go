package models

import (
	"uems/src/types"

	"github.com/shopspring/decimal"
)

// WalletBalance is mutated only under a row lock: settlement selects it FOR
// UPDATE, checks sufficiency and debits within the same transaction.
type WalletBalance struct {
	UserID   uint            `gorm:"primarykey" json:"user_id"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency string          `json:"currency,omitempty"`

	User User `json:"-"`

	types.Timestamps
}
