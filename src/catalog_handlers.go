package main

import (
	"errors"
	"log"
	"net/http"
	"uems/src/db"
	"uems/src/models"
	"uems/src/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seatMapEntry struct {
	SeatID   uint             `json:"seat_id"`
	Row      string           `json:"row"`
	Number   uint             `json:"number"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Taken    bool             `json:"taken"`
}

func catalogRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/events", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{Status: types.EVENT_OPEN}).
				Preload("Area").
				Order("starts_at asc").
				Find(&events).
				Error; err != nil {
				log.Printf("Error retrieving Events: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{ID: params.ID}).
				Preload("Area").
				First(&event).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving Event: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			var prices []models.CategoryPrice
			if err := db.
				Where(&models.CategoryPrice{EventID: event.ID, Active: true}).
				Find(&prices).
				Error; err != nil {
				log.Printf("Error retrieving prices for event %d: %s\n", event.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event, "prices": prices})
		}).
		GET("/events/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()

			var configs []models.SeatConfiguration
			if err := db.
				Where(&models.SeatConfiguration{EventID: params.ID, Status: types.SEAT_AVAILABLE}).
				Preload("Seat").
				Find(&configs).
				Error; err != nil {
				log.Printf("Error retrieving seat map for event %d: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			var prices []models.CategoryPrice
			if err := db.
				Where(&models.CategoryPrice{EventID: params.ID, Active: true}).
				Find(&prices).
				Error; err != nil {
				log.Printf("Error retrieving prices for event %d: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			priceByCategory := make(map[string]decimal.Decimal, len(prices))
			for _, p := range prices {
				priceByCategory[p.Category] = p.Amount
			}

			var taken []uint
			if err := db.
				Model(&models.Ticket{}).
				Where("event_id = ?", params.ID).
				Where("status IN ?", types.LiveTicketStatuses).
				Pluck("seat_id", &taken).
				Error; err != nil {
				log.Printf("Error retrieving occupancy for event %d: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			takenSet := make(map[uint]bool, len(taken))
			for _, id := range taken {
				takenSet[id] = true
			}

			seats := make([]seatMapEntry, 0, len(configs))
			for _, cfg := range configs {
				entry := seatMapEntry{
					SeatID:   cfg.SeatID,
					Row:      cfg.Seat.Row,
					Number:   cfg.Seat.Number,
					Category: cfg.Category,
					Taken:    takenSet[cfg.SeatID],
				}
				if price, ok := priceByCategory[cfg.Category]; ok {
					entry.Price = &price
				}
				seats = append(seats, entry)
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seats})
		})
	return apiv1
}
