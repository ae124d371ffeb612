package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
	"uems/src/db"
	"uems/src/models"
	"uems/src/types"
	"uems/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func admissionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admissions/check-in", func(ctx *gin.Context) {
			var body types.AdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			ticketId, billId, err := utils.DecodeTicketCode(body.Code)
			if err != nil {
				log.Printf("Error decoding admission code: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid admission code"})
				return
			}

			var ticket models.Ticket
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Where(&models.Ticket{ID: ticketId}).
					Preload("Event").
					First(&ticket).
					Error
				if err != nil {
					return err
				}
				if ticket.BillID == nil || *ticket.BillID != billId {
					return errors.New("admission code does not match this ticket")
				}
				if ticket.Event.Status != types.EVENT_OPEN {
					return errors.New("ticket admissions are not accepted")
				}
				if ticket.Status != types.TICKET_BOOKED {
					return fmt.Errorf("cannot admit a %s ticket", ticket.Status)
				}
				now := time.Now()
				ticket.Status = types.TICKET_CHECKED_IN
				ticket.CheckedInAt = &now
				return tx.
					Model(&models.Ticket{}).
					Where("id = ?", ticket.ID).
					Updates(map[string]any{
						"status":        types.TICKET_CHECKED_IN,
						"checked_in_at": now,
					}).
					Error
			})
			if err != nil {
				log.Printf("Error on ticket check-in: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		POST("/admissions/check-out", func(ctx *gin.Context) {
			var body types.AdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			ticketId, billId, err := utils.DecodeTicketCode(body.Code)
			if err != nil {
				log.Printf("Error decoding admission code: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid admission code"})
				return
			}

			var ticket models.Ticket
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Where(&models.Ticket{ID: ticketId}).
					First(&ticket).
					Error
				if err != nil {
					return err
				}
				if ticket.BillID == nil || *ticket.BillID != billId {
					return errors.New("admission code does not match this ticket")
				}
				if ticket.Status != types.TICKET_CHECKED_IN {
					return fmt.Errorf("cannot check out a %s ticket", ticket.Status)
				}
				now := time.Now()
				ticket.Status = types.TICKET_CHECKED_OUT
				ticket.CheckedOutAt = &now
				return tx.
					Model(&models.Ticket{}).
					Where("id = ?", ticket.ID).
					Updates(map[string]any{
						"status":         types.TICKET_CHECKED_OUT,
						"checked_out_at": now,
					}).
					Error
			})
			if err != nil {
				log.Printf("Error on ticket check-out: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}
