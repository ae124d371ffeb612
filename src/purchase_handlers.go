package main

import (
	"errors"
	"log"
	"net/http"
	"uems/src/common"
	"uems/src/db"
	"uems/src/lib"
	"uems/src/models"
	"uems/src/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func purchaseStatusCode(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidSeat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrSeatConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// cachedPurchaseView renders the cached state of a gateway purchase, but
// only for the user the reference belongs to; anyone else falls through to
// the DB lookup, which filters by owner.
func cachedPurchaseView(val string, userId uint) (gin.H, bool) {
	if !gjson.Valid(val) {
		return nil, false
	}
	if gjson.Get(val, "user_id").Uint() != uint64(userId) {
		return nil, false
	}
	return gin.H{
		"reference": gjson.Get(val, "reference").String(),
		"status":    gjson.Get(val, "status").String(),
		"amount":    gjson.Get(val, "amount").String(),
		"currency":  gjson.Get(val, "currency").String(),
	}, true
}

func purchaseHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/purchases", func(ctx *gin.Context) {
			var body types.CreatePurchaseRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")

			switch types.PaymentMethod(body.Strategy) {
			case types.PAYMENT_WALLET:
				result, err := common.WalletPurchase(userId, &body)
				if err != nil {
					ctx.JSON(purchaseStatusCode(err), gin.H{"error": err.Error()})
					return
				}
				go common.SendBookingConfirmation(result.BillID)
				ctx.JSON(http.StatusCreated, gin.H{"data": result})
			case types.PAYMENT_GATEWAY:
				checkout, err := common.GatewayPurchase(ctx.Copy(), userId, &body)
				if err != nil {
					ctx.JSON(purchaseStatusCode(err), gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusCreated, gin.H{"data": checkout})
			default:
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment strategy"})
			}
		}).
		GET("/purchases/:reference", func(ctx *gin.Context) {
			var params types.PurchaseReferenceURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")

			if val, ok := lib.CachedValue(ctx, common.PurchaseCacheKey(params.Reference)); ok {
				if view, owned := cachedPurchaseView(val, userId); owned {
					ctx.JSON(http.StatusOK, view)
					return
				}
			}

			var tickets []models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{Reference: &params.Reference, UserID: userId}).
				Find(&tickets).
				Error; err != nil {
				log.Printf("Error retrieving purchase %s: %s\n", params.Reference, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			if len(tickets) == 0 {
				ctx.JSON(http.StatusOK, gin.H{"reference": params.Reference, "status": types.TICKET_CANCELED})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"reference": params.Reference,
				"status":    tickets[0].Status,
				"tickets":   tickets,
			})
		}).
		GET("/wallet", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var wallet models.WalletBalance
			db := db.GetDb()
			if err := db.
				Where(&models.WalletBalance{UserID: userId}).
				First(&wallet).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusOK, gin.H{"data": models.WalletBalance{UserID: userId, Amount: decimal.Zero}})
					return
				}
				log.Printf("Error retrieving wallet for user %d: %s\n", userId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": wallet})
		}).
		POST("/wallet/topup", func(ctx *gin.Context) {
			var body types.WalletTopUpRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			amount, err := decimal.NewFromString(body.Amount)
			if err != nil || amount.LessThanOrEqual(decimal.Zero) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
				return
			}
			userId := ctx.GetUint("id")

			var wallet models.WalletBalance
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				err := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where(&models.WalletBalance{UserID: userId}).
					First(&wallet).
					Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					wallet = models.WalletBalance{UserID: userId, Amount: amount}
					return tx.Create(&wallet).Error
				}
				if err != nil {
					return err
				}
				wallet.Amount = wallet.Amount.Add(amount)
				return tx.
					Model(&models.WalletBalance{}).
					Where("user_id = ?", userId).
					Update("amount", wallet.Amount).
					Error
			})
			if err != nil {
				log.Printf("Error topping up wallet for user %d: %s\n", userId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": wallet})
		})
	return g
}
