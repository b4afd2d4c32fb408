package orderControllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/config"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

// Metadata keys under which the checkout form and cart travel through the
// gateway session. The webhook recovers them from here, so no server-side
// stash is needed between session creation and payment confirmation.
const (
	metadataFormKey = "form_data"
	metadataCartKey = "cart"
)

const checkoutSessionTTL = 30 * time.Minute

type CheckoutSessionRequest struct {
	Cart []CartItemInput `json:"cart" binding:"required,dive"`
	Form ShippingForm    `json:"form_data" binding:"required"`
}

type ConfirmOrderRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ShippingForm
	Cart []CartItemInput `json:"cart" binding:"required,dive"`
}

func lineItemsFromCart(cart []CartItemInput, serverURL string) []payment.LineItem {
	items := make([]payment.LineItem, 0, len(cart))
	for _, item := range cart {
		name := item.Name
		if len(name) > 100 {
			name = name[:100]
		}
		qty := item.Qty
		if qty > 99 {
			qty = 99
		}
		unitAmount := int64(math.Round(item.Price * 100))
		if unitAmount < 10 {
			unitAmount = 10 // gateway minimum charge
		}
		imageURL := item.Img
		if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
			imageURL = strings.TrimRight(serverURL, "/") + "/uploads/" + imageURL
		}
		items = append(items, payment.LineItem{
			Name:       name,
			UnitAmount: unitAmount,
			Quantity:   qty,
			ImageURL:   imageURL,
		})
	}
	return items
}

func sessionMetadata(form ShippingForm, cart []CartItemInput) (map[string]string, error) {
	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode form metadata: %w", err)
	}
	cartJSON, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart metadata: %w", err)
	}
	return map[string]string{
		metadataFormKey: string(formJSON),
		metadataCartKey: string(cartJSON),
	}, nil
}

// confirmPaidSession is the client-driven confirmation path. It trusts the
// gateway, not the client, for payment truth, then funnels into the same
// insert-if-absent step as the webhook so both paths dedup on the session id.
func confirmPaidSession(ctx context.Context, db *gorm.DB, gw Gateway, req ConfirmOrderRequest) (*models.Order, bool, error) {
	session, err := gw.RetrieveSession(ctx, req.SessionID)
	if err != nil {
		return nil, false, fmt.Errorf("retrieve session: %w", err)
	}
	if session.PaymentStatus != payment.PaymentStatusPaid {
		return nil, false, ErrPaymentNotCompleted
	}

	total, err := computeTotal(req.Cart)
	if err != nil {
		return nil, false, err
	}

	sessionID := session.ID
	order := &models.Order{
		FirstName:       req.FirstName,
		Email:           req.Email,
		StreetAddress:   req.StreetAddress,
		TownCity:        req.TownCity,
		PhoneNumber:     req.PhoneNumber,
		Items:           orderItemsFromCart(req.Cart),
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

// POST /api/orders/create-checkout-session
func CreateCheckoutSessionHandler(gw Gateway, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, err := computeTotal(req.Cart); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		metadata, err := sessionMetadata(req.Form, req.Cart)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
			return
		}

		session, err := gw.CreateCheckoutSession(c.Request.Context(), payment.CheckoutParams{
			LineItems:     lineItemsFromCart(req.Cart, cfg.ServerURL),
			Currency:      cfg.Stripe.Currency,
			CustomerEmail: req.Form.Email,
			Metadata:      metadata,
			SuccessURL:    cfg.ClientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     cfg.ClientURL + "/billing",
			ExpiresAt:     time.Now().Add(checkoutSessionTTL).Unix(),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway error", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": session.URL})
	}
}

// POST /api/orders/place-order-after-payment
//
// Idempotent: replaying the same session returns the already-created order
// with 200 instead of creating a duplicate.
func PlaceOrderAfterPaymentHandler(db *gorm.DB, gw Gateway, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, created, err := confirmPaidSession(c.Request.Context(), db, gw, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrPaymentNotCompleted), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidCartItem):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order", "details": err.Error()})
			}
			return
		}

		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "Order already placed", "order": order})
			return
		}

		notifyAsync("confirmation", func() error { return mail.SendOrderConfirmation(order) })
		broadcastNewOrder(order)

		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}
