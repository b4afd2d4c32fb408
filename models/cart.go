package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"index" json:"cart_id"`
	ProductID string    `gorm:"not null" json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Img       string    `json:"img"`
	Qty       int       `gorm:"default:1" json:"qty"`
	AddedAt   time.Time `json:"added_at"`
}
