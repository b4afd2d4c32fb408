package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/swiftcart-dev/swiftcart-api/controllers/order"
	"github.com/swiftcart-dev/swiftcart-api/middleware"
)

func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	orders := api.Group("/orders")
	{
		// Cash on delivery
		orders.POST("/cod", orderControllers.PlaceCODOrderHandler(d.DB, d.Mail))

		// Online payment
		orders.POST("/create-checkout-session", orderControllers.CreateCheckoutSessionHandler(d.Gateway, d.Cfg))
		orders.POST("/place-order-after-payment", orderControllers.PlaceOrderAfterPaymentHandler(d.DB, d.Gateway, d.Mail))

		// Reads
		orders.GET("/allorders", orderControllers.GetAllOrdersHandler(d.DB))
		orders.GET("/user/:email", orderControllers.GetUserOrdersHandler(d.DB))
		orders.GET("/recent", orderControllers.GetRecentOrdersHandler(d.DB))
		orders.GET("/total-count", orderControllers.GetOrderCountHandler(d.DB))
		orders.GET("/export-excel", middleware.ValidateAPIKey(d.Cfg.AdminAPIKey), orderControllers.ExportOrdersToExcel(d.DB))

		// Live order feed for the admin panel
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		// Lifecycle
		orders.PUT("/:orderId/cancel", orderControllers.CancelOrderHandler(d.DB, d.Gateway, d.Mail))
		orders.PUT("/:orderId/status", orderControllers.UpdateOrderStatusHandler(d.DB, d.Gateway, d.Mail))

		orders.GET("/:orderId", orderControllers.GetOrderByIDHandler(d.DB))
	}
}
