package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/swiftcart-dev/swiftcart-api/controllers/admin"
	"github.com/swiftcart-dev/swiftcart-api/middleware"
)

func SetupAdminRoutes(api *gin.RouterGroup, d Deps) {
	admin := api.Group("/admin")
	{
		admin.POST("/register", adminController.RegisterAdminHandler(d.DB, d.Mail))
		admin.POST("/verify-otp", adminController.VerifyAdminOTPHandler(d.DB))
		admin.POST("/login", adminController.LoginAdminHandler(d.DB, d.Cfg.JWTSecret))

		protected := admin.Group("")
		protected.Use(middleware.ValidateAPIKey(d.Cfg.AdminAPIKey))
		{
			protected.GET("/admins", adminController.GetAllAdminsHandler(d.DB))
		}
	}
}
