package authControllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ForgotOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyForgotOTPRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// POST /api/auth/forgot-otp
func SendForgotOTPHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Email not registered"})
			return
		}

		code, err := issueOTP(db, req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send OTP"})
			return
		}
		if err := mail.SendOTP(req.Email, code); err != nil {
			log.Printf("OTP email to %s failed: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send OTP"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email"})
	}
}

// POST /api/auth/verify-forgot-otp
func VerifyForgotOTPHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyForgotOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := checkOTP(db, req.Email, req.OTP); err != nil {
			if errors.Is(err, errInvalidOTP) || errors.Is(err, errExpiredOTP) {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Password reset failed"})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Password reset failed"})
			return
		}

		if err := db.Model(&models.User{}).
			Where("email = ?", req.Email).
			Update("password", string(hashed)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Password reset failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
