package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/mailer"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"github.com/swiftcart-dev/swiftcart-api/payment"
	"gorm.io/gorm"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// allowedTransitions is the whole status machine. Cancelled and delivered are
// terminal.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusProcessing):
		return models.OrderStatusProcessing, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// errNotCancellable reports a cancel attempt on an order that is no longer in
// the processing state, including one that lost the claim to a racing cancel.
type errNotCancellable struct {
	status models.OrderStatus
}

func (e errNotCancellable) Error() string {
	return fmt.Sprintf("order cannot be cancelled as it's already %s", e.status)
}

// cancelOrder cancels a processing order. The cancellation is claimed with a
// conditional update before the gateway is touched: of two racing cancels
// exactly one flips the row, so a completed card payment is refunded exactly
// once. A refund failure releases the claim and aborts the cancellation, so
// the operation can be retried. Cash orders never touch the gateway.
func cancelOrder(ctx context.Context, db *gorm.DB, gw Gateway, order *models.Order) (*payment.Refund, error) {
	if order.Status != models.OrderStatusProcessing {
		return nil, errNotCancellable{status: order.Status}
	}

	now := time.Now()
	claim := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusProcessing).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusCancelled,
			"cancelled_at": now,
		})
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		// Lost the race: another request already moved the order on.
		status := models.OrderStatusCancelled
		var current models.Order
		if err := db.Select("status").First(&current, order.ID).Error; err == nil {
			status = current.Status
		}
		return nil, errNotCancellable{status: status}
	}

	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now

	if order.PaymentMethod != models.PaymentMethodCard || order.PaymentStatus != models.PaymentStatusCompleted {
		return nil, nil
	}

	if order.StripePaymentID == nil {
		releaseCancelClaim(db, order)
		return nil, errors.New("order has no payment reference to refund")
	}
	refund, err := gw.CreateRefund(ctx, *order.StripePaymentID)
	if err != nil {
		releaseCancelClaim(db, order)
		return nil, fmt.Errorf("refund failed: %w", err)
	}

	order.PaymentStatus = models.PaymentStatusRefunded
	order.RefundID = refund.ID
	order.RefundAmount = float64(refund.Amount) / 100
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusRefunded,
		"refund_id":      refund.ID,
		"refund_amount":  order.RefundAmount,
	}).Error; err != nil {
		// The refund already went through; keep the claim and surface the
		// persistence error.
		return nil, err
	}
	return refund, nil
}

// releaseCancelClaim undoes a claimed cancellation after a refund failure so a
// later cancel attempt can claim it again.
func releaseCancelClaim(db *gorm.DB, order *models.Order) {
	if err := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusCancelled).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusProcessing,
			"cancelled_at": nil,
		}).Error; err != nil {
		log.Printf("failed to release cancel claim on order %d: %v", order.ID, err)
	}
	order.Status = models.OrderStatusProcessing
	order.CancelledAt = nil
}

func stampStatus(order *models.Order, status models.OrderStatus) {
	now := time.Now()
	switch status {
	case models.OrderStatusShipped:
		order.ShippedAt = &now
	case models.OrderStatusDelivered:
		order.DeliveredAt = &now
	}
	order.Status = status
}

// -------- Handlers --------

// PUT /api/orders/:orderId/status
func UpdateOrderStatusHandler(db *gorm.DB, gw Gateway, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderId")
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if !canTransition(order.Status, newStatus) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("cannot change order from %s to %s", order.Status, newStatus),
			})
			return
		}

		if newStatus == models.OrderStatusCancelled {
			refund, err := cancelOrder(c.Request.Context(), db, gw, &order)
			if err != nil {
				var nc errNotCancellable
				if errors.As(err, &nc) {
					c.JSON(http.StatusBadRequest, gin.H{"error": nc.Error()})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund", "details": err.Error()})
				return
			}
			notifyAsync("cancellation", func() error { return mail.SendOrderCancellation(&order) })
			c.JSON(http.StatusOK, gin.H{"message": "Order status updated to cancelled", "order": order, "refund": refund})
			return
		}

		stampStatus(&order, newStatus)
		if err := db.Omit("Items").Save(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}

		notifyAsync("status update", func() error { return mail.SendOrderStatusUpdate(&order) })
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Order status updated to %s", newStatus), "order": order})
	}
}

// PUT /api/orders/:orderId/cancel
func CancelOrderHandler(db *gorm.DB, gw Gateway, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderId")

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if order.Status != models.OrderStatusProcessing {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Order cannot be cancelled as it's already %s", order.Status),
			})
			return
		}

		refund, err := cancelOrder(c.Request.Context(), db, gw, &order)
		if err != nil {
			var nc errNotCancellable
			if errors.As(err, &nc) {
				c.JSON(http.StatusBadRequest, gin.H{"error": nc.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund", "details": err.Error()})
			return
		}

		notifyAsync("cancellation", func() error { return mail.SendOrderCancellation(&order) })

		c.JSON(http.StatusOK, gin.H{
			"message": "Order cancelled successfully",
			"order":   order,
			"refund":  refund,
		})
	}
}
