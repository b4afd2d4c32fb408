package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/gorm"
)

// DeleteProduct removes a product from the catalog. Existing orders keep
// their copied snapshot of it.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Where("product_id = ?", c.Param("id")).Delete(&models.Product{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
	}
}
