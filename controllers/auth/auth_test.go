package authControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.OTP{}))
	return db
}

type fakeSender struct {
	mu       sync.Mutex
	lastOTP  string
	lastMail string
	fail     bool
}

func (s *fakeSender) SendOTP(email, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.lastMail = email
	s.lastOTP = otp
	return nil
}

func (s *fakeSender) SendOrderConfirmation(*models.Order) error { return nil }
func (s *fakeSender) SendOrderStatusUpdate(*models.Order) error { return nil }
func (s *fakeSender) SendOrderCancellation(*models.Order) error { return nil }

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedOTP(t *testing.T, db *gorm.DB, email, code string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.OTP{Email: email, Code: code, ExpiresAt: expiresAt}).Error)
}

func otpCount(t *testing.T, db *gorm.DB, email string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.OTP{}).Where("email = ?", email).Count(&n).Error)
	return n
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code[0], byte('1'))
	}
}

func TestIssueOTPReplacesOutstandingCode(t *testing.T) {
	db := newTestDB(t)

	first, err := issueOTP(db, "asha@example.com")
	require.NoError(t, err)
	second, err := issueOTP(db, "asha@example.com")
	require.NoError(t, err)

	// Only the latest code is live.
	assert.EqualValues(t, 1, otpCount(t, db, "asha@example.com"))
	if first == second {
		t.Skip("generated codes collided")
	}
	assert.ErrorIs(t, checkOTP(db, "asha@example.com", first), errInvalidOTP)
	assert.NoError(t, checkOTP(db, "asha@example.com", second))
}

func TestCheckOTPWrongCode(t *testing.T) {
	db := newTestDB(t)
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(otpTTL))

	err := checkOTP(db, "asha@example.com", "654321")
	assert.ErrorIs(t, err, errInvalidOTP)

	// A failed attempt does not burn the code.
	assert.EqualValues(t, 1, otpCount(t, db, "asha@example.com"))
	assert.NoError(t, checkOTP(db, "asha@example.com", "123456"))
}

func TestCheckOTPExpired(t *testing.T) {
	db := newTestDB(t)
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(-time.Minute))

	err := checkOTP(db, "asha@example.com", "123456")
	assert.ErrorIs(t, err, errExpiredOTP)
	assert.EqualValues(t, 1, otpCount(t, db, "asha@example.com"))
}

func TestCheckOTPConsumedOnSuccess(t *testing.T) {
	db := newTestDB(t)
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(otpTTL))

	require.NoError(t, checkOTP(db, "asha@example.com", "123456"))
	assert.EqualValues(t, 0, otpCount(t, db, "asha@example.com"))

	// Second use of the same code fails.
	assert.ErrorIs(t, checkOTP(db, "asha@example.com", "123456"), errInvalidOTP)
}

func registerBody() gin.H {
	return gin.H{
		"name":     "Asha",
		"mobile":   "9876543210",
		"email":    "asha@example.com",
		"password": "secret123",
	}
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	db := newTestDB(t)
	mail := &fakeSender{}

	r := gin.New()
	r.POST("/api/auth/register", RegisterHandler(db, mail))
	r.POST("/api/auth/verify-otp", VerifyOTPHandler(db))
	r.POST("/api/auth/login", LoginHandler(db, "test-secret"))

	w := performJSON(t, r, http.MethodPost, "/api/auth/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, mail.lastOTP, 6)

	// Unverified accounts cannot log in.
	w = performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not verified")

	w = performJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"email": "asha@example.com", "otp": mail.lastOTP})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&user).Error)
	assert.True(t, user.IsVerified)

	w = performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "token")
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	mail := &fakeSender{}
	r := gin.New()
	r.POST("/api/auth/register", RegisterHandler(db, mail))

	w := performJSON(t, r, http.MethodPost, "/api/auth/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := registerBody()
	body["mobile"] = "9000000000"
	w = performJSON(t, r, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
}

func TestVerifyOTPWrongCode(t *testing.T) {
	db := newTestDB(t)
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(otpTTL))
	require.NoError(t, db.Create(&models.User{
		Name: "Asha", Mobile: "9876543210", Email: "asha@example.com", Password: "x",
	}).Error)

	r := gin.New()
	r.POST("/api/auth/verify-otp", VerifyOTPHandler(db))

	w := performJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"email": "asha@example.com", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid OTP")

	var user models.User
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&user).Error)
	assert.False(t, user.IsVerified)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	db := newTestDB(t)
	seedOTP(t, db, "asha@example.com", "123456", time.Now().Add(-time.Second))

	r := gin.New()
	r.POST("/api/auth/verify-otp", VerifyOTPHandler(db))

	w := performJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"email": "asha@example.com", "otp": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "OTP has expired")
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Asha", Mobile: "9876543210", Email: "asha@example.com",
		Password: string(hashed), IsVerified: true,
	}).Error)

	r := gin.New()
	r.POST("/api/auth/login", LoginHandler(db, "test-secret"))

	w := performJSON(t, r, http.MethodPost, "/api/auth/login",
		gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}
