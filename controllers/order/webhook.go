package orderControllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

// orderFromSession rebuilds the order from the cart and shipping form stashed
// in the session metadata at checkout time, then runs the same
// insert-if-absent step as the client callback path.
func orderFromSession(db *gorm.DB, session *payment.CheckoutSession) (*models.Order, bool, error) {
	var form ShippingForm
	if err := json.Unmarshal([]byte(session.Metadata[metadataFormKey]), &form); err != nil {
		return nil, false, fmt.Errorf("decode form metadata: %w", err)
	}
	var cart []CartItemInput
	if err := json.Unmarshal([]byte(session.Metadata[metadataCartKey]), &cart); err != nil {
		return nil, false, fmt.Errorf("decode cart metadata: %w", err)
	}

	total, err := computeTotal(cart)
	if err != nil {
		return nil, false, err
	}

	sessionID := session.ID
	order := &models.Order{
		FirstName:       form.FirstName,
		Email:           form.Email,
		StreetAddress:   form.StreetAddress,
		TownCity:        form.TownCity,
		PhoneNumber:     form.PhoneNumber,
		Items:           orderItemsFromCart(cart),
		TotalPrice:      total,
		PaymentMethod:   models.PaymentMethodCard,
		PaymentStatus:   models.PaymentStatusCompleted,
		Status:          models.OrderStatusProcessing,
		StripeSessionID: &sessionID,
		CreatedAt:       time.Now(),
	}
	if session.PaymentIntent != "" {
		intent := session.PaymentIntent
		order.StripePaymentID = &intent
	}

	return createOrderIfAbsent(db, order)
}

// POST /api/payment/webhook
//
// Signature verification runs over the exact raw request bytes; this route
// must stay clear of any body-parsing middleware. Once the signature checks
// out the handler always acknowledges with 200 so the gateway does not retry
// forever: a persistence failure here is logged, not surfaced.
func StripeWebhookHandler(db *gorm.DB, mail mailer.Sender, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		event, err := payment.ConstructEvent(body, c.GetHeader("Stripe-Signature"), webhookSecret)
		if err != nil {
			log.Printf("webhook signature error: %v", err)
			c.String(http.StatusBadRequest, "Webhook Error: %v", err)
			return
		}

		if event.Type == payment.EventCheckoutSessionCompleted {
			if session, err := event.Session(); err != nil {
				log.Printf("webhook session decode failed: %v", err)
			} else if order, created, err := orderFromSession(db, session); err != nil {
				log.Printf("webhook order save failed for session %s: %v", session.ID, err)
			} else if created {
				log.Printf("order %d created via webhook for session %s", order.ID, session.ID)
				notifyAsync("confirmation", func() error { return mail.SendOrderConfirmation(order) })
				broadcastNewOrder(order)
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
