package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Metadata map[string]any

func (a Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *Metadata) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type EventStatus string

const (
	EVENT_DRAFT    EventStatus = "draft"
	EVENT_OPEN     EventStatus = "open"
	EVENT_CLOSED   EventStatus = "closed"
	EVENT_CANCELED EventStatus = "canceled"
)

type SeatStatus string

const (
	SEAT_AVAILABLE   SeatStatus = "available"
	SEAT_UNAVAILABLE SeatStatus = "unavailable"
)

type TicketStatus string

const (
	TICKET_PENDING     TicketStatus = "pending"
	TICKET_BOOKED      TicketStatus = "booked"
	TICKET_CANCELED    TicketStatus = "canceled"
	TICKET_EXPIRED     TicketStatus = "expired"
	TICKET_CHECKED_IN  TicketStatus = "checked_in"
	TICKET_CHECKED_OUT TicketStatus = "checked_out"
)

// LiveTicketStatuses are the statuses that keep a seat occupied. The partial
// unique index on tickets(event_id, seat_id) covers exactly this set.
var LiveTicketStatuses = []TicketStatus{
	TICKET_PENDING,
	TICKET_BOOKED,
	TICKET_CHECKED_IN,
	TICKET_CHECKED_OUT,
}

type BillStatus string

const (
	BILL_PENDING  BillStatus = "pending"
	BILL_PAID     BillStatus = "paid"
	BILL_FAILED   BillStatus = "failed"
	BILL_REFUNDED BillStatus = "refunded"
)

type PaymentMethod string

const (
	PAYMENT_GATEWAY PaymentMethod = "gateway"
	PAYMENT_WALLET  PaymentMethod = "wallet"
)

type CreatePurchaseRequestBody struct {
	EventID  uint   `json:"event" binding:"required"`
	SeatIDs  []uint `json:"seats" binding:"required,min=1"`
	Strategy string `json:"strategy" binding:"required,oneof=wallet gateway"`
}

type AdmissionRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type WalletTopUpRequestBody struct {
	Amount string `json:"amount" binding:"required,decimalamount"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PurchaseReferenceURIParams struct {
	Reference string `uri:"reference" binding:"required"`
}

// SettlementDescriptor is the payload sealed inside the opaque order
// reference handed to the payment gateway. The callback decodes it to find
// the holds it must promote or release.
type SettlementDescriptor struct {
	Reference string `json:"reference"`
	UserID    uint   `json:"user_id"`
	EventID   uint   `json:"event_id"`
	SeatIDs   []uint `json:"seat_ids"`
	TicketIDs []uint `json:"ticket_ids"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
