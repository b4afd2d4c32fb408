package authControllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	errInvalidOTP = errors.New("Invalid OTP")
	errExpiredOTP = errors.New("OTP has expired")
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func RegisterHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
			return
		}
		if err := db.Where("mobile = ?", req.Mobile).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mobile number already registered"})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
			return
		}

		user := models.User{
			Name:       req.Name,
			Mobile:     req.Mobile,
			Email:      req.Email,
			Password:   string(hashed),
			IsVerified: false,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
			return
		}

		code, err := issueOTP(db, req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
			return
		}
		if err := mail.SendOTP(req.Email, code); err != nil {
			log.Printf("OTP email to %s failed: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send OTP. Please try again."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
	}
}

// POST /api/auth/verify-otp
func VerifyOTPHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := checkOTP(db, req.Email, req.OTP); err != nil {
			if errors.Is(err, errInvalidOTP) || errors.Is(err, errExpiredOTP) {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "OTP verification failed"})
			return
		}

		res := db.Model(&models.User{}).Where("email = ?", req.Email).Update("is_verified", true)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "OTP verification failed"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Registration successful. You can now log in."})
	}
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		if !user.IsVerified {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User not verified"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.ID,
			"email":   user.Email,
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(jwtSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   signed,
			"user": gin.H{
				"id":     user.ID,
				"name":   user.Name,
				"email":  user.Email,
				"mobile": user.Mobile,
			},
		})
	}
}

// GET /api/auth/verified-count (admin dashboard)
func GetVerifiedUserCountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.Model(&models.User{}).Where("is_verified = ?", true).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user count"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// GET /api/auth/users (admin)
func GetAllUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "name", "mobile", "email", "is_verified", "created_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
