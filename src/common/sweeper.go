package common

import (
	"log"
	"time"
	"uems/src/db"
	"uems/src/lib"
	"uems/src/models"
	"uems/src/monitoring"
	"uems/src/types"

	"gorm.io/gorm"
)

// ReleaseExpiredHolds deletes PENDING tickets whose hold window has lapsed,
// giving the seats back to the pool. Holds being settled concurrently are
// safe: promotion and this delete both filter on PENDING, so one of them
// wins and the other touches nothing.
func ReleaseExpiredHolds() {
	db := db.GetDb()

	var released int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var expired []uint
		if err := tx.
			Model(&models.Ticket{}).
			Where("status = ?", types.TICKET_PENDING).
			Where("hold_expires_at IS NOT NULL").
			Where("hold_expires_at < ?", time.Now()).
			Pluck("id", &expired).
			Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		count, err := Release(tx, expired)
		released = count
		return err
	})
	if err != nil {
		log.Printf("[sweeper] Failed to release expired holds: %s\n", err.Error())
		return
	}
	if released > 0 {
		log.Printf("[sweeper] Released %d expired holds\n", released)
		monitoring.RecordReleasedHolds("expired", int(released))
	}
}

// ScheduleHoldSweeper registers the expiry sweep as a recurring job.
func ScheduleHoldSweeper() {
	if _, err := lib.CreateCronJob(ReleaseExpiredHolds, time.Minute); err != nil {
		log.Printf("[sweeper] Could not schedule hold sweeper: %s\n", err.Error())
	}
}
