package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/config"
	orderControllers "github.com/swiftcart-dev/swiftcart-api/controllers/order"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

// Deps carries everything the route groups need, constructed once in main.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Gateway orderControllers.Gateway
	Stripe  *payment.Client
	Mail    mailer.Sender
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")

	SetupAuthRoutes(api, d)
	SetupAdminRoutes(api, d)
	SetupProductRoutes(api, d)
	SetupCartRoutes(api, d)
	SetupOrderRoutes(api, d)
	SetupPaymentRoutes(api, d)
}
