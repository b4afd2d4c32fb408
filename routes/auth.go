package routes

import (
	"github.com/gin-gonic/gin"
	authControllers "github.com/swiftcart-dev/swiftcart-api/controllers/auth"
	"github.com/swiftcart-dev/swiftcart-api/middleware"
)

func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", authControllers.RegisterHandler(d.DB, d.Mail))
		auth.POST("/verify-otp", authControllers.VerifyOTPHandler(d.DB))
		auth.POST("/login", authControllers.LoginHandler(d.DB, d.Cfg.JWTSecret))
		auth.POST("/forgot-otp", authControllers.SendForgotOTPHandler(d.DB, d.Mail))
		auth.POST("/verify-forgot-otp", authControllers.VerifyForgotOTPHandler(d.DB))

		// Admin dashboard reads
		protected := auth.Group("")
		protected.Use(middleware.ValidateAPIKey(d.Cfg.AdminAPIKey))
		{
			protected.GET("/verified-count", authControllers.GetVerifiedUserCountHandler(d.DB))
			protected.GET("/users", authControllers.GetAllUsersHandler(d.DB))
		}
	}
}
