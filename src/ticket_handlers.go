package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"uems/src/db"
	"uems/src/models"
	"uems/src/types"
	"uems/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var tickets []models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{UserID: userId}).
				Preload("Event").
				Preload("Bill").
				Order("created_at desc").
				Limit(50).
				Find(&tickets).
				Error; err != nil {
				log.Printf("Error retrieving Tickets: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{ID: params.ID, UserID: userId}).
				Preload("Event").
				Preload("Bill").
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving Ticket: %s\n", err.Error())
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{ID: params.ID, UserID: userId}).
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving Ticket: %s\n", err.Error())
				ctx.Status(http.StatusNotFound)
				return
			}
			if ticket.Status != types.TICKET_BOOKED && ticket.Status != types.TICKET_CHECKED_IN {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket has no admission code"})
				return
			}

			code := ticket.QRCode
			if code == nil {
				if ticket.BillID == nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket has no admission code"})
					return
				}
				minted, err := utils.EncodeTicketCode(ticket.ID, *ticket.BillID)
				if err != nil {
					log.Printf("Error minting admission code for ticket %d: %s\n", ticket.ID, err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
				if err := db.
					Model(&models.Ticket{}).
					Where("id = ?", ticket.ID).
					Update("qr_code", minted).
					Error; err != nil {
					log.Printf("Error storing admission code for ticket %d: %s\n", ticket.ID, err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
				code = &minted
			}

			qrc, err := qrcode.New(*code)
			if err != nil {
				log.Printf("Error building qrcode for ticket %d: %s\n", ticket.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			filename := fmt.Sprintf("ticketcode_%d.jpeg", ticket.ID)
			filepath := path.Join(os.TempDir(), filename)
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
