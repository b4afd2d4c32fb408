package models

import "time"

// Admin keeps its OTP inline on the row: admin registration is rare enough that
// a separate OTP table buys nothing.
type Admin struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Mobile     string     `json:"mobile"`
	Email      string     `gorm:"unique;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	OTP        string     `json:"-"`
	OTPExpiry  *time.Time `json:"-"`
	IsVerified bool       `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
}
