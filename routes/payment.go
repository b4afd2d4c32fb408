package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/swiftcart-dev/swiftcart-api/controllers/order"
	paymentControllers "github.com/swiftcart-dev/swiftcart-api/controllers/payment"
)

func SetupPaymentRoutes(api *gin.RouterGroup, d Deps) {
	pay := api.Group("/payment")
	{
		// The webhook handler reads the raw request body itself: the signature
		// covers the exact bytes, so nothing may parse the body before it.
		pay.POST("/webhook", orderControllers.StripeWebhookHandler(d.DB, d.Mail, d.Cfg.Stripe.WebhookSecret))

		pay.POST("/create-payment-intent", paymentControllers.CreatePaymentIntentHandler(d.Stripe, d.Cfg))
		pay.GET("/verify-payment", paymentControllers.VerifyPaymentHandler(d.DB, d.Gateway))
	}
}
