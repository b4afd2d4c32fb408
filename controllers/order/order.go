package orderControllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the payment-processor capability the order engine consumes.
// *payment.Client satisfies it; tests swap in a fake.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentIntentID string) (*payment.Refund, error)
}

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidCartItem     = errors.New("cart item needs a positive price and quantity")
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// -------- Request Structs --------

type ShippingForm struct {
	FirstName     string `json:"first_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	StreetAddress string `json:"street_address" binding:"required"`
	TownCity      string `json:"town_city" binding:"required"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
}

type CartItemInput struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Qty       int     `json:"qty" binding:"required,gt=0"`
	Img       string  `json:"img"`
}

type PlaceCODOrderRequest struct {
	ShippingForm
	Cart []CartItemInput `json:"cart" binding:"required,dive"`
}

// -------- Core Logic --------

// computeTotal derives the order total from line items. The client never gets
// to supply a total: whatever it sends is ignored and recomputed here.
func computeTotal(cart []CartItemInput) (float64, error) {
	if len(cart) == 0 {
		return 0, ErrEmptyCart
	}
	var total float64
	for _, item := range cart {
		if item.Price <= 0 || item.Qty <= 0 {
			return 0, ErrInvalidCartItem
		}
		total += item.Price * float64(item.Qty)
	}
	return total, nil
}

func orderItemsFromCart(cart []CartItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Qty:       item.Qty,
			Img:       item.Img,
		})
	}
	return items
}

// createOrderIfAbsent persists order, deduplicating on the gateway session id.
// The insert runs with ON CONFLICT DO NOTHING against the unique index on
// stripe_session_id, so two racing creators (client callback vs webhook) can
// both call this and exactly one order comes out; the loser gets the winner's
// row back with created=false. A read-then-insert would race here.
func createOrderIfAbsent(db *gorm.DB, order *models.Order) (*models.Order, bool, error) {
	if order.StripeSessionID == nil {
		// COD orders carry no dedup key; each placement is a new order.
		if err := db.Create(order).Error; err != nil {
			return nil, false, err
		}
		return order, true, nil
	}

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("Items").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_session_id"}},
			DoNothing: true,
		}).Create(order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if len(order.Items) > 0 {
			return tx.Create(&order.Items).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		var existing models.Order
		if err := db.Preload("Items").
			Where("stripe_session_id = ?", *order.StripeSessionID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return order, true, nil
}

func placeCODOrder(db *gorm.DB, req PlaceCODOrderRequest) (*models.Order, error) {
	total, err := computeTotal(req.Cart)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		FirstName:     req.FirstName,
		Email:         req.Email,
		StreetAddress: req.StreetAddress,
		TownCity:      req.TownCity,
		PhoneNumber:   req.PhoneNumber,
		Items:         orderItemsFromCart(req.Cart),
		TotalPrice:    total,
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusProcessing,
		CreatedAt:     time.Now(),
	}

	if err := db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// notifyAsync dispatches a best-effort email. Failures are logged and never
// reach the caller; the order is already persisted by the time this runs.
func notifyAsync(kind string, send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Printf("order email (%s) failed: %v", kind, err)
		}
	}()
}

// -------- Handlers --------

// POST /api/orders/cod
func PlaceCODOrderHandler(db *gorm.DB, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceCODOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := placeCODOrder(db, req)
		if err != nil {
			if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrInvalidCartItem) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place COD order"})
			return
		}

		notifyAsync("confirmation", func() error { return mail.SendOrderConfirmation(order) })
		broadcastNewOrder(order)

		c.JSON(http.StatusCreated, gin.H{"message": "COD order placed successfully", "order": order})
	}
}
