package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/swiftcart-dev/swiftcart-api/controllers/cart"
)

func SetupCartRoutes(api *gin.RouterGroup, d Deps) {
	cart := api.Group("/cart")
	{
		cart.POST("/add", cartControllers.AddToCartHandler(d.DB))
		cart.PUT("/update-quantity", cartControllers.UpdateQuantityHandler(d.DB))
		cart.GET("/:userId", cartControllers.GetCartHandler(d.DB))
		cart.DELETE("/:userId/:productId", cartControllers.RemoveCartItemHandler(d.DB))
	}
}
