package common

import (
	"fmt"
	"log"
	"os"
	"strings"
	"uems/src/db"
	"uems/src/lib"
	"uems/src/models"
	"uems/src/utils"

	"github.com/google/uuid"
)

// SendBookingConfirmation runs after a settlement has committed: it mints an
// admission code for every booked ticket and emails the buyer. Handlers call
// it on its own goroutine and nothing here can fail the purchase; every
// error is logged and swallowed.
func SendBookingConfirmation(billID uuid.UUID) {
	db := db.GetDb()

	var bill models.Bill
	if err := db.
		Where(&models.Bill{ID: billID}).
		Preload("User").
		Preload("Tickets").
		First(&bill).
		Error; err != nil {
		log.Printf("[notifier] Could not load bill %s: %s\n", billID, err.Error())
		return
	}

	lines := make([]string, 0, len(bill.Tickets))
	for _, ticket := range bill.Tickets {
		code, err := utils.EncodeTicketCode(ticket.ID, bill.ID)
		if err != nil {
			log.Printf("[notifier] Could not mint code for ticket %d: %s\n", ticket.ID, err.Error())
			continue
		}
		if err := db.
			Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("qr_code", code).
			Error; err != nil {
			log.Printf("[notifier] Could not store code for ticket %d: %s\n", ticket.ID, err.Error())
			continue
		}
		lines = append(lines, fmt.Sprintf("Ticket #%d (%s)", ticket.ID, ticket.Category))
	}

	if bill.User.Email == "" {
		log.Printf("[notifier] Bill %s has no recipient email, skipping mail\n", billID)
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment of %s %s was received and your seats are booked:\n\n%s\n\nYour tickets with admission QR codes are available in your account.\n",
		bill.User.Name,
		bill.Amount,
		strings.ToUpper(bill.Currency),
		strings.Join(lines, "\n"),
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("SMTP_FROM"),
		FromName: os.Getenv("SMTP_FROM_NAME"),
		To:       []string{bill.User.Email},
		Subject:  "Your booking is confirmed",
		Body:     body,
	})
	if err != nil {
		log.Printf("[notifier] Could not send confirmation for bill %s: %s\n", billID, err.Error())
		return
	}
	log.Printf("[notifier] Confirmation for bill %s sent to %s\n", billID, bill.User.Email)
}
