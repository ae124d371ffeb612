package models

import (
	"uems/src/types"

	"github.com/shopspring/decimal"
)

type Area struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`

	Seats []Seat `json:"seats,omitempty"`

	types.Timestamps
}

type Seat struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	AreaID uint   `json:"area_id,omitempty"`
	Row    string `json:"row,omitempty"`
	Number uint   `json:"number,omitempty"`

	Area Area `json:"-"`

	types.Timestamps
}

// SeatConfiguration declares that a physical seat is part of an event's
// layout and what category it sells under. It is configuration only: whether
// the seat is actually taken lives in Ticket.
type SeatConfiguration struct {
	ID       uint             `gorm:"primarykey" json:"id"`
	EventID  uint             `gorm:"uniqueIndex:idx_seat_configurations_event_seat" json:"event_id,omitempty"`
	SeatID   uint             `gorm:"uniqueIndex:idx_seat_configurations_event_seat" json:"seat_id,omitempty"`
	Category string           `json:"category,omitempty"`
	Status   types.SeatStatus `gorm:"default:'available'" json:"status,omitempty"`

	Event Event `json:"-"`
	Seat  Seat  `json:"seat,omitempty"`

	types.Timestamps
}

type CategoryPrice struct {
	ID       uint            `gorm:"primarykey" json:"id"`
	EventID  uint            `gorm:"uniqueIndex:idx_category_prices_event_category" json:"event_id,omitempty"`
	Category string          `gorm:"uniqueIndex:idx_category_prices_event_category" json:"category,omitempty"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Active   bool            `gorm:"default:true" json:"active"`

	Event Event `json:"-"`

	types.Timestamps
}
