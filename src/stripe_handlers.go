package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"rbs/src/common"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

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
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			requestId := pi.Metadata["requestId"]
			if requestId == "" {
				log.Printf("[%s] No requestId in metadata, skipping\n", pi.ID)
				break
			}
			if err := purchaseFlow.ApplyPaymentSucceeded(requestId, pi.ID); err != nil {
				if errors.Is(err, common.ErrTransactionProcessed) {
					log.Printf("[%s] Transaction already processed\n", requestId)
					break
				}
				if errors.Is(err, common.ErrNotFound) {
					log.Printf("[%s] No matching transaction, skipping\n", requestId)
					break
				}
				// 5xx makes Stripe redeliver the event.
				log.Printf("Error processing Transaction [%s]: %s\n", requestId, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			requestId := pi.Metadata["requestId"]
			if err := common.ResolveTransactionFailure(requestId, types.TRANSACTION_FAILED, pi.ID); err != nil {
				log.Printf("Error failing Transaction [%s]: %s\n", requestId, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		case "payment_intent.canceled":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			requestId := pi.Metadata["requestId"]
			if err := common.ResolveTransactionFailure(requestId, types.TRANSACTION_CANCELED, pi.ID); err != nil {
				log.Printf("Error canceling Transaction [%s]: %s\n", requestId, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			requestId := cs.Metadata["requestId"]
			if err := common.ResolveTransactionFailure(requestId, types.TRANSACTION_EXPIRED, ""); err != nil {
				log.Printf("Error expiring Transaction [%s]: %s\n", requestId, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}
