package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/gorm"
)

type AddToCartRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Product struct {
		ProductID string  `json:"product_id" binding:"required"`
		Name      string  `json:"name" binding:"required"`
		Price     float64 `json:"price" binding:"required,gt=0"`
		Img       string  `json:"img"`
		Qty       int     `json:"qty"`
	} `json:"product" binding:"required"`
}

type UpdateQuantityRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=increase decrease"`
}

// POST /api/cart/add
//
// Adds a product to the cart, bumping the quantity if it is already there.
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Product.Qty <= 0 {
			req.Product.Qty = 1
		}

		var cart models.Cart
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where(models.Cart{UserID: req.UserID}).FirstOrCreate(&cart).Error; err != nil {
				return err
			}

			var item models.CartItem
			err := tx.Where("cart_id = ? AND product_id = ?", cart.CartID, req.Product.ProductID).First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(&models.CartItem{
					CartID:    cart.CartID,
					ProductID: req.Product.ProductID,
					Name:      req.Product.Name,
					Price:     req.Product.Price,
					Img:       req.Product.Img,
					Qty:       req.Product.Qty,
					AddedAt:   time.Now(),
				}).Error
			}
			if err != nil {
				return err
			}
			item.Qty++
			return tx.Save(&item).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
			return
		}

		if err := db.Preload("Items").First(&cart, "cart_id = ?", cart.CartID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

// GET /api/cart/:userId
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cart models.Cart
		if err := db.Preload("Items").Where("user_id = ?", c.Param("userId")).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Cart is empty"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart/:userId/:productId
func RemoveCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cart models.Cart
		if err := db.Where("user_id = ?", c.Param("userId")).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			return
		}

		result := db.Where("cart_id = ? AND product_id = ?", cart.CartID, c.Param("productId")).
			Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error removing item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
			return
		}

		if err := db.Preload("Items").First(&cart, "cart_id = ?", cart.CartID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error removing item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

// PUT /api/cart/update-quantity
//
// Quantity never drops below one; removal is its own endpoint.
func UpdateQuantityHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var cart models.Cart
		if err := db.Where("user_id = ?", req.UserID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			return
		}

		var item models.CartItem
		err := db.Where("cart_id = ? AND product_id = ?", cart.CartID, req.ProductID).First(&item).Error
		switch {
		case err == nil:
			switch req.Action {
			case "increase":
				item.Qty++
			case "decrease":
				if item.Qty > 1 {
					item.Qty--
				}
			}
			if err := db.Save(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating quantity"})
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Unknown product in this cart; return the cart unchanged.
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating quantity"})
			return
		}

		if err := db.Preload("Items").First(&cart, "cart_id = ?", cart.CartID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating quantity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}
