package common

import (
	"errors"
	"fmt"
	"log"
	"time"
	"uems/src/models"
	"uems/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TryHold claims every seat in pricing for one purchase by inserting PENDING
// ticket rows, all-or-nothing. The cheap Pluck pre-check only rejects seats
// that are already visibly taken; the real arbiter is the partial unique
// index on tickets(event_id, seat_id), which makes exactly one of two racing
// inserts fail with gorm.ErrDuplicatedKey.
func TryHold(tx *gorm.DB, event *models.Event, userID uint, pricing []SeatPricing, reference *string, expiresAt *time.Time) ([]uint, error) {
	seatIDs := make([]uint, 0, len(pricing))
	for _, item := range pricing {
		seatIDs = append(seatIDs, item.SeatID)
	}

	var taken []uint
	if err := tx.
		Model(&models.Ticket{}).
		Where("event_id = ?", event.ID).
		Where("seat_id IN ?", seatIDs).
		Where("status IN ?", types.LiveTicketStatuses).
		Pluck("seat_id", &taken).
		Error; err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
	}
	if len(taken) > 0 {
		return nil, fmt.Errorf("%w: seats %v", ErrSeatConflict, taken)
	}

	created := make([]uint, 0, len(pricing))
	for _, item := range pricing {
		seatID := item.SeatID
		ticket := models.Ticket{
			EventID:       event.ID,
			SeatID:        &seatID,
			UserID:        userID,
			Category:      item.Category,
			Status:        types.TICKET_PENDING,
			Reference:     reference,
			HoldExpiresAt: expiresAt,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			// Undo the rows this batch managed to insert. Inside a wallet
			// settlement the surrounding rollback repeats this work, which
			// is harmless: the delete only touches rows created here.
			if _, derr := Release(tx, created); derr != nil {
				log.Printf("[ledger] Failed to release partial holds %v: %s\n", created, derr.Error())
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: seats [%d]", ErrSeatConflict, seatID)
			}
			return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}
		created = append(created, ticket.ID)
	}

	return created, nil
}

// Promote moves a batch of PENDING holds to BOOKED under the given bill.
// Callers run it inside the same transaction that creates the bill (and, on
// the wallet path, debits the balance), so the whole settlement lands or
// none of it does.
func Promote(tx *gorm.DB, ticketIDs []uint, billID uuid.UUID, issuedAt time.Time) error {
	res := tx.
		Model(&models.Ticket{}).
		Where("id IN ?", ticketIDs).
		Where("status = ?", types.TICKET_PENDING).
		Updates(map[string]any{
			"status":          types.TICKET_BOOKED,
			"bill_id":         billID,
			"issued_at":       issuedAt,
			"hold_expires_at": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %s", ErrSettlementFailed, res.Error.Error())
	}
	if res.RowsAffected != int64(len(ticketIDs)) {
		return fmt.Errorf("%w: expected to promote %d holds, promoted %d", ErrSettlementFailed, len(ticketIDs), res.RowsAffected)
	}
	return nil
}

// Release hard-deletes PENDING holds and reports how many rows went away.
// Ids that are already gone or have moved past PENDING are ignored, so
// replays and double releases are no-ops.
func Release(tx *gorm.DB, ticketIDs []uint) (int64, error) {
	if len(ticketIDs) == 0 {
		return 0, nil
	}
	res := tx.
		Where("id IN ?", ticketIDs).
		Where("status = ?", types.TICKET_PENDING).
		Delete(&models.Ticket{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %s", ErrSettlementFailed, res.Error.Error())
	}
	return res.RowsAffected, nil
}
