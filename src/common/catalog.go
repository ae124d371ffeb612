package common

import (
	"errors"
	"fmt"
	"log"
	"uems/src/models"
	"uems/src/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeatPricing is one priced line item of a purchase: the category the seat
// sells under for this event and the unit price that applies.
type SeatPricing struct {
	SeatID   uint
	Category string
	Price    decimal.Decimal
}

// ResolveSeat answers whether a seat can be sold for an event and at what
// price. It is a pure read; every rejection wraps ErrInvalidSeat.
func ResolveSeat(tx *gorm.DB, event *models.Event, seatID uint) (*SeatPricing, error) {
	var seat models.Seat
	if err := tx.Where(&models.Seat{ID: seatID}).First(&seat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seat [%d] does not exist", ErrInvalidSeat, seatID)
		}
		return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
	}
	if seat.AreaID != event.AreaID {
		return nil, fmt.Errorf("%w: seat [%d] is not in the event area", ErrInvalidSeat, seatID)
	}

	var cfg models.SeatConfiguration
	if err := tx.Where(&models.SeatConfiguration{EventID: event.ID, SeatID: seatID}).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seat [%d] is not configured for this event", ErrInvalidSeat, seatID)
		}
		return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
	}
	if cfg.Status != types.SEAT_AVAILABLE {
		return nil, fmt.Errorf("%w: seat [%d] is not for sale", ErrInvalidSeat, seatID)
	}

	var price models.CategoryPrice
	if err := tx.Where(&models.CategoryPrice{EventID: event.ID, Category: cfg.Category, Active: true}).First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active price for category [%s]", ErrInvalidSeat, cfg.Category)
		}
		return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
	}

	return &SeatPricing{SeatID: seatID, Category: cfg.Category, Price: price.Amount}, nil
}

// ValidateSeats resolves every requested seat and computes the purchase
// total. A single bad seat rejects the whole batch, before any hold exists.
func ValidateSeats(tx *gorm.DB, eventID uint, seatIDs []uint) (*models.Event, []SeatPricing, decimal.Decimal, error) {
	total := decimal.Zero

	var event models.Event
	if err := tx.Where(&models.Event{ID: eventID}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, total, fmt.Errorf("%w: event [%d] does not exist", ErrInvalidSeat, eventID)
		}
		return nil, nil, total, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
	}
	if event.Status != types.EVENT_OPEN {
		return nil, nil, total, fmt.Errorf("%w: event [%d] is not open for purchases", ErrInvalidSeat, eventID)
	}

	// duplicates are caught before any seat is resolved
	seen := make(map[uint]bool, len(seatIDs))
	for _, seatID := range seatIDs {
		if seen[seatID] {
			return nil, nil, decimal.Zero, fmt.Errorf("%w: seat [%d] requested twice", ErrInvalidSeat, seatID)
		}
		seen[seatID] = true
	}

	pricing := make([]SeatPricing, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		item, err := ResolveSeat(tx, &event, seatID)
		if err != nil {
			log.Printf("[catalog] Rejected seat %d for event %d: %s\n", seatID, eventID, err.Error())
			return nil, nil, decimal.Zero, err
		}
		pricing = append(pricing, *item)
		total = total.Add(item.Price)
	}

	return &event, pricing, total, nil
}
