package authControllers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/gorm"
)

const otpTTL = 10 * time.Minute

// GenerateOTP returns a 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// issueOTP replaces any outstanding code for the email with a fresh one, so a
// single live record exists per address.
func issueOTP(db *gorm.DB, email string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTP{
			Email:     email,
			Code:      code,
			ExpiresAt: time.Now().Add(otpTTL),
		}).Error
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// checkOTP validates a submitted code. Wrong code and expired code are
// distinct rejections, and neither consumes the record; only a successful
// check deletes it.
func checkOTP(db *gorm.DB, email, code string) error {
	var record models.OTP
	if err := db.Where("email = ?", email).Order("created_at DESC").First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errInvalidOTP
		}
		return err
	}
	if record.Code != code {
		return errInvalidOTP
	}
	if time.Now().After(record.ExpiresAt) {
		return errExpiredOTP
	}
	return db.Delete(&record).Error
}
