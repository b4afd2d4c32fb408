package cartControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart-dev/swiftcart-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Cart{}, &models.CartItem{}))
	return db
}

func cartRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.POST("/api/cart/add", AddToCartHandler(db))
	r.GET("/api/cart/:userId", GetCartHandler(db))
	r.DELETE("/api/cart/:userId/:productId", RemoveCartItemHandler(db))
	r.PUT("/api/cart/update-quantity", UpdateQuantityHandler(db))
	return r
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func addBody(userID, productID string) gin.H {
	return gin.H{
		"user_id": userID,
		"product": gin.H{
			"product_id": productID,
			"name":       "Wireless Mouse",
			"price":      499.0,
			"img":        "mouse.jpg",
		},
	}
}

func userCart(t *testing.T, db *gorm.DB, userID string) models.Cart {
	t.Helper()
	var cart models.Cart
	require.NoError(t, db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error)
	return cart
}

func TestAddToCartCreatesCartOnFirstAdd(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	w := performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cart := userCart(t, db, "user-1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod-1", cart.Items[0].ProductID)
	assert.Equal(t, 1, cart.Items[0].Qty)
}

func TestAddToCartBumpsExistingItem(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	for i := 0; i < 3; i++ {
		w := performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	cart := userCart(t, db, "user-1")
	require.Len(t, cart.Items, 1) // same product never duplicates a row
	assert.Equal(t, 3, cart.Items[0].Qty)

	// One cart per user, no matter how many adds.
	var carts int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", "user-1").Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}

func TestGetCartEmpty(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	w := performJSON(t, r, http.MethodGet, "/api/cart/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")
}

func TestRemoveCartItem(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))
	performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-2"))

	w := performJSON(t, r, http.MethodDelete, "/api/cart/user-1/prod-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cart := userCart(t, db, "user-1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod-2", cart.Items[0].ProductID)

	w = performJSON(t, r, http.MethodDelete, "/api/cart/user-1/prod-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateQuantity(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))

	update := func(action string) *httptest.ResponseRecorder {
		return performJSON(t, r, http.MethodPut, "/api/cart/update-quantity", gin.H{
			"user_id": "user-1", "product_id": "prod-1", "action": action,
		})
	}

	w := update("increase")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, userCart(t, db, "user-1").Items[0].Qty)

	// Decrease floors at one; removal is a separate endpoint.
	for i := 0; i < 3; i++ {
		w = update("decrease")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, 1, userCart(t, db, "user-1").Items[0].Qty)

	w = update("discard")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateQuantityUnknownProductLeavesCartUnchanged(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))

	w := performJSON(t, r, http.MethodPut, "/api/cart/update-quantity", gin.H{
		"user_id": "user-1", "product_id": "prod-other", "action": "increase",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, userCart(t, db, "user-1").Items[0].Qty)
}

func TestUpdateQuantityLookupFailureIsAnError(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	performJSON(t, r, http.MethodPost, "/api/cart/add", addBody("user-1", "prod-1"))

	// A broken item lookup must surface as a 500, not a silently unchanged
	// cart.
	require.NoError(t, db.Migrator().DropTable(&models.CartItem{}))

	w := performJSON(t, r, http.MethodPut, "/api/cart/update-quantity", gin.H{
		"user_id": "user-1", "product_id": "prod-1", "action": "increase",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateQuantityUnknownCart(t *testing.T) {
	db := newTestDB(t)
	r := cartRouter(db)

	w := performJSON(t, r, http.MethodPut, "/api/cart/update-quantity", gin.H{
		"user_id": "ghost", "product_id": "prod-1", "action": "increase",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
