package productcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/gorm"
)

// UpdateProduct partially updates a product; at least one field is required.
// Orders are unaffected: they copied their product fields at order time.
func UpdateProduct(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Where("product_id = ?", c.Param("id")).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		updates := make(map[string]interface{})
		if name := c.PostForm("name"); name != "" {
			updates["name"] = name
		}
		if priceStr := c.PostForm("price"); priceStr != "" {
			price, err := strconv.ParseFloat(priceStr, 64)
			if err != nil || price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid price"})
				return
			}
			updates["price"] = price
		}
		if category := c.PostForm("category"); category != "" {
			updates["category"] = category
		}

		if file, err := c.FormFile("image"); err == nil {
			filename := strings.ReplaceAll(file.Filename, " ", "_")
			saveDir := filepath.Join(uploadsDir, "products")
			if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create upload folder"})
				return
			}
			if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save image"})
				return
			}
			updates["img"] = fmt.Sprintf("/uploads/products/%s", filename)
		}

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "At least one field (name, price, category or image) is required for update.",
			})
			return
		}

		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update product"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully", "product": product})
	}
}
