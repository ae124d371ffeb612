package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"
	"uems/src/config"
	"uems/src/db"
	"uems/src/lib"
	"uems/src/models"
	"uems/src/monitoring"
	"uems/src/types"
	"uems/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletSettlementResult is what a completed wallet purchase hands back to
// the handler: the booked tickets, the paid bill and the balance left over.
type WalletSettlementResult struct {
	TicketIDs []uint          `json:"ticket_ids"`
	BillID    uuid.UUID       `json:"bill_id"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"`
}

// GatewayCheckout is the redirect half of a gateway purchase. The holds are
// committed before this is returned; the reference is what the client polls.
type GatewayCheckout struct {
	CheckoutURL string          `json:"checkout_url"`
	Reference   string          `json:"reference"`
	TicketIDs   []uint          `json:"ticket_ids"`
	Total       decimal.Decimal `json:"total"`
}

// WalletPurchase settles a purchase against the buyer's wallet in a single
// transaction: validate, hold, lock the balance FOR UPDATE, debit, bill,
// promote. Any failure rolls the whole thing back, so there is never a
// debited wallet without booked tickets or the other way around.
func WalletPurchase(userID uint, body *types.CreatePurchaseRequestBody) (*WalletSettlementResult, error) {
	startedAt := time.Now()
	defer monitoring.ObserveSettlement("wallet", startedAt)

	db := db.GetDb()
	var result WalletSettlementResult
	err := db.Transaction(func(tx *gorm.DB) error {
		event, pricing, total, err := ValidateSeats(tx, body.EventID, body.SeatIDs)
		if err != nil {
			return err
		}
		ticketIDs, err := TryHold(tx, event, userID, pricing, nil, nil)
		if err != nil {
			return err
		}

		var wallet models.WalletBalance
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.WalletBalance{UserID: userID}).
			First(&wallet).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user [%d] has no wallet", ErrInsufficientFunds, userID)
			}
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}
		if wallet.Amount.LessThan(total) {
			return fmt.Errorf("%w: balance %s does not cover %s", ErrInsufficientFunds, wallet.Amount, total)
		}

		balance := wallet.Amount.Sub(total)
		if err := tx.
			Model(&models.WalletBalance{}).
			Where("user_id = ?", userID).
			Update("amount", balance).
			Error; err != nil {
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}

		bill := models.Bill{
			UserID:      userID,
			Amount:      total,
			Currency:    config.DefaultCurrency(),
			Method:      types.PAYMENT_WALLET,
			Status:      types.BILL_PAID,
			ReferenceID: uuid.NewString(),
		}
		if err := tx.Create(&bill).Error; err != nil {
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}
		if err := Promote(tx, ticketIDs, bill.ID, time.Now()); err != nil {
			return err
		}

		result = WalletSettlementResult{
			TicketIDs: ticketIDs,
			BillID:    bill.ID,
			Total:     total,
			Balance:   balance,
		}
		return nil
	})
	if err != nil {
		log.Printf("[settlement] Wallet purchase by user %d failed: %s\n", userID, err.Error())
		monitoring.RecordPurchase("wallet", outcomeLabel(err))
		return nil, err
	}

	monitoring.RecordPurchase("wallet", "paid")
	return &result, nil
}

// GatewayPurchase commits PENDING holds with an expiry, then sends the buyer
// to Stripe Checkout. The session carries the sealed order reference, which
// is the only thing the webhook needs to finish or abandon the purchase. If
// the session cannot be created the fresh holds are released right away.
func GatewayPurchase(ctx context.Context, userID uint, body *types.CreatePurchaseRequestBody) (*GatewayCheckout, error) {
	startedAt := time.Now()
	defer monitoring.ObserveSettlement("gateway", startedAt)

	db := db.GetDb()
	reference := uuid.NewString()
	expiresAt := time.Now().Add(config.HoldTTL())

	var event models.Event
	var pricing []SeatPricing
	var descriptor types.SettlementDescriptor
	err := db.Transaction(func(tx *gorm.DB) error {
		ev, pr, total, err := ValidateSeats(tx, body.EventID, body.SeatIDs)
		if err != nil {
			return err
		}
		ticketIDs, err := TryHold(tx, ev, userID, pr, &reference, &expiresAt)
		if err != nil {
			return err
		}
		event = *ev
		pricing = pr
		descriptor = types.SettlementDescriptor{
			Reference: reference,
			UserID:    userID,
			EventID:   ev.ID,
			SeatIDs:   body.SeatIDs,
			TicketIDs: ticketIDs,
			Amount:    total.String(),
			Currency:  config.DefaultCurrency(),
		}
		return nil
	})
	if err != nil {
		log.Printf("[settlement] Gateway purchase by user %d failed: %s\n", userID, err.Error())
		monitoring.RecordPurchase("gateway", outcomeLabel(err))
		return nil, err
	}

	opaque, err := utils.EncodeOrderReference(&descriptor)
	if err == nil {
		var session *stripe.CheckoutSession
		session, err = createCheckoutSession(ctx, &event, pricing, &descriptor, opaque)
		if err == nil {
			total, _ := decimal.NewFromString(descriptor.Amount)
			cachePurchaseStatus(ctx, &descriptor, types.TICKET_PENDING)
			monitoring.RecordPurchase("gateway", "redirected")
			return &GatewayCheckout{
				CheckoutURL: session.URL,
				Reference:   reference,
				TicketIDs:   descriptor.TicketIDs,
				Total:       total,
			}, nil
		}
	}

	log.Printf("[settlement] Checkout setup for reference %s failed: %s\n", reference, err.Error())
	rerr := db.Transaction(func(tx *gorm.DB) error {
		released, derr := Release(tx, descriptor.TicketIDs)
		monitoring.RecordReleasedHolds("checkout_setup_failed", int(released))
		return derr
	})
	if rerr != nil {
		log.Printf("[settlement] Failed to release holds for reference %s: %s\n", reference, rerr.Error())
	}
	monitoring.RecordPurchase("gateway", "settlement_failed")
	return nil, fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
}

// ConfirmGatewaySettlement finishes a gateway purchase from a paid checkout
// callback. The unique index on bills.reference_id arbitrates replays: the
// first callback creates the bill and promotes the holds, every later one
// finds the bill and returns nil without touching anything.
func ConfirmGatewaySettlement(opaque, sourceName, sourceValue string) (*uuid.UUID, error) {
	descriptor, err := utils.DecodeOrderReference(opaque)
	if err != nil {
		return nil, fmt.Errorf("%w: bad order reference: %s", ErrSettlementFailed, err.Error())
	}
	amount, err := decimal.NewFromString(descriptor.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad order amount: %s", ErrSettlementFailed, err.Error())
	}

	db := db.GetDb()
	var billID *uuid.UUID
	var refunded bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Bill
		err := tx.
			Where(&models.Bill{ReferenceID: descriptor.Reference}).
			First(&existing).
			Error
		if err == nil {
			log.Printf("[settlement] Reference %s already settled as bill %s, skipping\n", descriptor.Reference, existing.ID)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}

		// a late callback can land after the sweeper reclaimed the holds;
		// the payment still went through, so the money has to be tracked
		var surviving []uint
		if err := tx.
			Model(&models.Ticket{}).
			Where("id IN ?", descriptor.TicketIDs).
			Where("status = ?", types.TICKET_PENDING).
			Pluck("id", &surviving).
			Error; err != nil {
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}

		bill := models.Bill{
			UserID:      descriptor.UserID,
			Amount:      amount,
			Currency:    descriptor.Currency,
			Method:      types.PAYMENT_GATEWAY,
			Status:      types.BILL_PAID,
			ReferenceID: descriptor.Reference,
			SourceName:  sourceName,
			SourceValue: sourceValue,
		}
		if len(surviving) == 0 {
			bill.Status = types.BILL_REFUNDED
			refunded = true
			log.Printf("[settlement] No holds left for reference %s, recording the payment for refund\n", descriptor.Reference)
		} else if len(surviving) < len(descriptor.TicketIDs) {
			log.Printf("[settlement] Only %d of %d holds left for reference %s\n", len(surviving), len(descriptor.TicketIDs), descriptor.Reference)
		}
		if err := tx.Create(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("[settlement] Lost the settle race for reference %s, skipping\n", descriptor.Reference)
				return nil
			}
			return fmt.Errorf("%w: %s", ErrSettlementFailed, err.Error())
		}
		if len(surviving) == 0 {
			return nil
		}
		if err := Promote(tx, surviving, bill.ID, time.Now()); err != nil {
			return err
		}
		billID = &bill.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded {
		cachePurchaseStatus(context.Background(), descriptor, types.TICKET_CANCELED)
		monitoring.RecordPurchase("gateway", "refunded")
	}
	if billID != nil {
		cachePurchaseStatus(context.Background(), descriptor, types.TICKET_BOOKED)
		monitoring.RecordPurchase("gateway", "paid")
	}
	return billID, nil
}

// ReleaseGatewaySettlement abandons a gateway purchase whose checkout went
// nowhere. Safe to call more than once: released holds stay released.
func ReleaseGatewaySettlement(opaque, reason string) error {
	descriptor, err := utils.DecodeOrderReference(opaque)
	if err != nil {
		return fmt.Errorf("%w: bad order reference: %s", ErrSettlementFailed, err.Error())
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		released, derr := Release(tx, descriptor.TicketIDs)
		if derr != nil {
			return derr
		}
		log.Printf("[settlement] Released %d holds for reference %s (%s)\n", released, descriptor.Reference, reason)
		monitoring.RecordReleasedHolds(reason, int(released))
		return nil
	})
	if err != nil {
		return err
	}

	cachePurchaseStatus(context.Background(), descriptor, types.TICKET_CANCELED)
	return nil
}

func createCheckoutSession(ctx context.Context, event *models.Event, pricing []SeatPricing, descriptor *types.SettlementDescriptor, opaque string) (*stripe.CheckoutSession, error) {
	sc := lib.GetStripeClient()
	successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
	cancelUrl := fmt.Sprintf("%s/checkout/callback/cancel", os.Getenv("APP_HOST"))

	metadata := map[string]string{
		"order":     opaque,
		"requestId": descriptor.Reference,
		"userId":    fmt.Sprint(descriptor.UserID),
	}
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{}
	for k, v := range metadata {
		piParams.AddMetadata(k, v)
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(pricing))
	for _, item := range pricing {
		unitAmount := item.Price.Mul(decimal.NewFromInt(100)).IntPart()
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(descriptor.Currency),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s - seat %d (%s)", event.Title, item.SeatID, item.Category)),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(successUrl),
		CancelURL:         stripe.String(cancelUrl),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		LineItems:         lineItems,
		Metadata:          metadata,
		ExpiresAt:         stripe.Int64(time.Now().Add(config.HoldTTL()).Unix()),
	}
	return sc.V1CheckoutSessions.Create(ctx, &createParams)
}

// PurchaseCacheKey is where the poll endpoint finds the cached state of a
// gateway purchase before falling back to the ticket rows.
func PurchaseCacheKey(reference string) string {
	return fmt.Sprintf("purchase:%s", reference)
}

func cachePurchaseStatus(ctx context.Context, descriptor *types.SettlementDescriptor, status types.TicketStatus) {
	payload, err := json.Marshal(map[string]any{
		"reference": descriptor.Reference,
		"status":    status,
		"user_id":   descriptor.UserID,
		"event_id":  descriptor.EventID,
		"seat_ids":  descriptor.SeatIDs,
		"amount":    descriptor.Amount,
		"currency":  descriptor.Currency,
	})
	if err != nil {
		return
	}
	lib.CacheValue(ctx, PurchaseCacheKey(descriptor.Reference), string(payload), config.HoldTTL())
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSeat):
		return "invalid_seat"
	case errors.Is(err, ErrSeatConflict):
		return "conflict"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "settlement_failed"
	}
}
