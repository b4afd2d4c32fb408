package paymentControllers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/config"
	orderControllers "github.com/swiftcart-dev/swiftcart-api/controllers/order"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

type CreatePaymentIntentRequest struct {
	Amount   float64           `json:"amount" binding:"required,gt=0"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// POST /api/payment/create-payment-intent
func CreatePaymentIntentHandler(client *payment.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = cfg.Stripe.Currency
		}

		amount := int64(math.Round(req.Amount * 100)) // smallest currency unit
		intent, err := client.CreatePaymentIntent(c.Request.Context(), amount, currency, req.Metadata)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
	}
}

// GET /api/payment/verify-payment?session_id=...
//
// Read-only check for the client's success page: confirms the gateway saw the
// payment and reports whether the order has landed yet (the webhook may still
// be in flight).
func VerifyPaymentHandler(db *gorm.DB, gw orderControllers.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}

		session, err := gw.RetrieveSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification failed"})
			return
		}
		if session.PaymentStatus != payment.PaymentStatusPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
			return
		}

		var order models.Order
		if err := db.Where("stripe_session_id = ?", sessionID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{
					"paymentStatus": payment.PaymentStatusPaid,
					"message":       "Payment verified - order processing",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"paymentStatus": payment.PaymentStatusPaid,
			"orderId":       order.ID,
			"customerEmail": order.Email,
		})
	}
}
