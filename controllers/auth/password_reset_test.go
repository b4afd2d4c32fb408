package authControllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func resetRouter(db *gorm.DB, mail *fakeSender) *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/forgot-otp", SendForgotOTPHandler(db, mail))
	r.POST("/api/auth/verify-forgot-otp", VerifyForgotOTPHandler(db))
	r.POST("/api/auth/login", LoginHandler(db, "test-secret"))
	return r
}

func seedVerifiedUser(t *testing.T, db *gorm.DB, password string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Asha", Mobile: "9876543210", Email: "asha@example.com",
		Password: string(hashed), IsVerified: true,
	}).Error)
}

func TestForgotOTPUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	r := resetRouter(db, &fakeSender{})

	w := performJSON(t, r, http.MethodPost, "/api/auth/forgot-otp",
		gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Email not registered")
}

func TestForgotPasswordFlow(t *testing.T) {
	db := newTestDB(t)
	mail := &fakeSender{}
	r := resetRouter(db, mail)
	seedVerifiedUser(t, db, "oldsecret")

	w := performJSON(t, r, http.MethodPost, "/api/auth/forgot-otp",
		gin.H{"email": "asha@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, mail.lastOTP, 6)

	// Wrong code leaves the password alone.
	w = performJSON(t, r, http.MethodPost, "/api/auth/verify-forgot-otp",
		gin.H{"email": "asha@example.com", "otp": "000000", "new_password": "newsecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid OTP")

	w = performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "oldsecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Correct code rewrites the password; the old one stops working.
	w = performJSON(t, r, http.MethodPost, "/api/auth/verify-forgot-otp",
		gin.H{"email": "asha@example.com", "otp": mail.lastOTP, "new_password": "newsecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "oldsecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestForgotOTPExpiredCode(t *testing.T) {
	db := newTestDB(t)
	r := resetRouter(db, &fakeSender{})
	seedVerifiedUser(t, db, "oldsecret")
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(-time.Minute))

	w := performJSON(t, r, http.MethodPost, "/api/auth/verify-forgot-otp",
		gin.H{"email": "asha@example.com", "otp": "123456", "new_password": "newsecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "OTP has expired")
}
