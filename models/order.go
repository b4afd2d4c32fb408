package models

import "time"

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusProcessing OrderStatus = "processing" // Order placed, being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled while still processing

	// Payment statuses
	PaymentStatusPending   PaymentStatus = "pending"   // Payment not completed yet (COD)
	PaymentStatusCompleted PaymentStatus = "completed" // Payment captured by the gateway
	PaymentStatusFailed    PaymentStatus = "failed"    // Payment attempt failed
	PaymentStatusRefunded  PaymentStatus = "refunded"  // Money returned to customer

	// Payment methods
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	FirstName     string        `gorm:"not null" json:"first_name"`
	Email         string        `gorm:"not null;index" json:"email"`
	StreetAddress string        `gorm:"not null" json:"street_address"`
	TownCity      string        `gorm:"not null" json:"town_city"`
	PhoneNumber   string        `gorm:"not null" json:"phone_number"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice    float64       `json:"total_price"`
	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(10);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'processing'" json:"status"`

	// Checkout session id from the payment gateway. The unique index is what
	// makes order creation race-safe: the webhook and the client callback both
	// insert with ON CONFLICT DO NOTHING and the loser returns the winner's row.
	StripeSessionID *string `gorm:"uniqueIndex" json:"stripe_session_id,omitempty"`
	StripePaymentID *string `json:"stripe_payment_id,omitempty"`

	RefundID     string  `json:"refund_id,omitempty"`
	RefundAmount float64 `json:"refund_amount,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// OrderItem copies product fields at order time so later catalog edits never
// rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID string  `gorm:"not null" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Qty       int     `gorm:"not null" json:"qty"`
	Img       string  `json:"img"`
}
