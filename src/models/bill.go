package models

import (
	"uems/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill aggregates the tickets of one settled purchase. ReferenceID carries
// the opaque order reference for gateway purchases; its unique index is what
// makes callback replays settle exactly once.
type Bill struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	UserID      uint                `json:"user_id,omitempty"`
	Amount      decimal.Decimal     `gorm:"type:numeric(12,2)" json:"amount"`
	Currency    string              `json:"currency,omitempty"`
	Method      types.PaymentMethod `json:"method,omitempty"`
	Status      types.BillStatus    `gorm:"default:'pending'" json:"status,omitempty"`
	ReferenceID string              `gorm:"uniqueIndex" json:"reference_id,omitempty"`
	SourceName  string              `json:"-"`
	SourceValue string              `json:"-"`
	Metadata    *types.Metadata     `gorm:"type:jsonb" json:"metadata,omitempty"`

	User    User     `json:"-"`
	Tickets []Ticket `json:"tickets,omitempty"`

	types.Timestamps
}
