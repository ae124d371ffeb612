package models

import (
	"time"
	"uems/src/types"

	"github.com/google/uuid"
)

// Ticket is the reservation record for one seat at one event. A row is born
// PENDING when a hold is taken and either promoted to BOOKED by settlement or
// hard-deleted again; there is deliberately no soft delete here, because a
// lingering soft-deleted row would still occupy the partial unique index that
// enforces seat uniqueness.
type Ticket struct {
	ID       uint               `gorm:"primarykey" json:"id"`
	EventID  uint               `gorm:"uniqueIndex:idx_tickets_event_seat_live,where:status IN ('pending','booked','checked_in','checked_out')" json:"event_id,omitempty"`
	SeatID   *uint              `gorm:"uniqueIndex:idx_tickets_event_seat_live,where:status IN ('pending','booked','checked_in','checked_out')" json:"seat_id,omitempty"`
	UserID   uint               `json:"user_id,omitempty"`
	Category string             `json:"category,omitempty"`
	Status   types.TicketStatus `gorm:"default:'pending'" json:"status,omitempty"`

	BillID    *uuid.UUID `gorm:"type:uuid" json:"bill_id,omitempty"`
	Reference *string    `gorm:"index" json:"-"`
	QRCode    *string    `json:"-"`

	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time `json:"checked_out_at,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"-"`
	Bill  *Bill `json:"bill,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}
