package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"uems/src/common"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeWebhookRoute finishes or abandons gateway purchases. The sealed
// order reference rides in the session metadata, so the handler never trusts
// any identifier the gateway could have made up.
func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed", "checkout.session.async_payment_succeeded":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[CheckoutSession] ID: %s %s %s\n", cs.ID, cs.Status, cs.PaymentStatus)
			if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
				// completed session still awaiting an async payment method;
				// the succeeded or failed event settles it later
				break
			}
			opaque := cs.Metadata["order"]
			if opaque == "" {
				log.Printf("[%s] Session carries no order reference, skipping\n", cs.ID)
				break
			}
			billID, err := common.ConfirmGatewaySettlement(opaque, "checkout_session", cs.ID)
			if err != nil {
				log.Printf("Error confirming settlement for session %s: %s\n", cs.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if billID != nil {
				go common.SendBookingConfirmation(*billID)
			}
		case "checkout.session.expired", "checkout.session.async_payment_failed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			opaque := cs.Metadata["order"]
			if opaque == "" {
				log.Printf("[%s] Session carries no order reference, skipping\n", cs.ID)
				break
			}
			if err := common.ReleaseGatewaySettlement(opaque, string(event.Type)); err != nil {
				log.Printf("Error releasing holds for session %s: %s\n", cs.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}
