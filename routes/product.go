package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/swiftcart-dev/swiftcart-api/controllers/product"
	"github.com/swiftcart-dev/swiftcart-api/middleware"
)

func SetupProductRoutes(api *gin.RouterGroup, d Deps) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB))
		products.GET("/:id", productcontroller.GetProductByID(d.DB))

		protected := products.Group("")
		protected.Use(middleware.ValidateAPIKey(d.Cfg.AdminAPIKey))
		{
			protected.POST("", productcontroller.CreateProduct(d.DB, d.Cfg.UploadsDir))
			protected.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Cfg.UploadsDir))
			protected.DELETE("/:id", productcontroller.DeleteProduct(d.DB))
			protected.GET("/export-excel", productcontroller.ExportProductsToExcel(d.DB))
		}
	}
}
