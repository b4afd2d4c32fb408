package adminController

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	authControllers "github.com/swiftcart-dev/swiftcart-api/controllers/auth"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminOTPTTL = 10 * time.Minute

type RegisterAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyAdminOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type LoginAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/admin/register
func RegisterAdminHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.Admin
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		otp, err := authControllers.GenerateOTP()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		expiry := time.Now().Add(adminOTPTTL)
		admin := models.Admin{
			Name:      req.Name,
			Mobile:    req.Mobile,
			Email:     req.Email,
			Password:  string(hashed),
			OTP:       otp,
			OTPExpiry: &expiry,
		}
		if err := db.Create(&admin).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		if err := mail.SendOTP(req.Email, otp); err != nil {
			log.Printf("admin OTP email to %s failed: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send OTP"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "OTP sent to email"})
	}
}

// POST /api/admin/verify-otp
func VerifyAdminOTPHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyAdminOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var admin models.Admin
		if err := db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
			return
		}
		if admin.IsVerified {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Already verified"})
			return
		}
		if admin.OTP != req.OTP || admin.OTPExpiry == nil || time.Now().After(*admin.OTPExpiry) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
			return
		}

		if err := db.Model(&admin).Updates(map[string]interface{}{
			"is_verified": true,
			"otp":         "",
			"otp_expiry":  nil,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Admin verified successfully"})
	}
}

// POST /api/admin/login
func LoginAdminHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var admin models.Admin
		if err := db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
			return
		}
		if !admin.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{"message": "Email not verified"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"admin_id": admin.ID,
			"email":    admin.Email,
			"exp":      time.Now().Add(7 * 24 * time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   signed,
			"admin": gin.H{
				"id":    admin.ID,
				"name":  admin.Name,
				"email": admin.Email,
			},
		})
	}
}

// GET /api/admin/admins
func GetAllAdminsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var admins []models.Admin
		if err := db.Find(&admins).Error; err != nil {
			log.Println("failed to fetch admins:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admins"})
			return
		}
		c.JSON(http.StatusOK, admins)
	}
}
