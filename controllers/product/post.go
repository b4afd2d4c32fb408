package productcontroller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/gorm"
)

// CreateProduct creates a new catalog product with an image upload.
func CreateProduct(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		priceStr := c.PostForm("price")
		category := c.PostForm("category")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required."})
			return
		}
		if priceStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Price is required."})
			return
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid price"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Product image is required."})
			return
		}
		filename := strings.ReplaceAll(file.Filename, " ", "_")

		saveDir := filepath.Join(uploadsDir, "products")
		if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to create upload folder: %v", err)})
			return
		}
		if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("Failed to save image: %v", err)})
			return
		}

		product := models.Product{
			ProductID: uuid.NewString(),
			Name:      name,
			Price:     price,
			Category:  category,
			Img:       fmt.Sprintf("/uploads/products/%s", filename),
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Product added successfully",
			"product": product,
		})
	}
}
