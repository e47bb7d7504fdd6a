package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	database.DB = db

	r := gin.New()
	// Stand-in for the auth middleware: a fixed logged-in user.
	r.Use(func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Set("role", "admin")
	})
	r.POST("/api/checkout", ProcessCheckout)
	r.DELETE("/api/products/:id", DeleteProduct)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessCheckoutHappyPath(t *testing.T) {
	r := setupRouter(t)
	require.NoError(t, database.DB.Create(&models.User{
		Email: "admin@example.com", PasswordHash: "x", Role: "admin",
	}).Error)
	product := models.Product{Title: "Americano", Price: decimal.NewFromFloat(10.00), Stock: 5}
	require.NoError(t, database.DB.Create(&product).Error)

	w := postJSON(t, r, "/api/checkout", gin.H{
		"items":        []gin.H{{"product_id": product.ID, "quantity": 5}},
		"payment_type": "cash",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Sale models.Sale `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Sale.Total.Equal(decimal.NewFromFloat(55.00)), "total %s", resp.Sale.Total)

	var fresh models.Product
	require.NoError(t, database.DB.First(&fresh, product.ID).Error)
	assert.Equal(t, 0, fresh.Stock)
}

func TestProcessCheckoutInsufficientStock(t *testing.T) {
	r := setupRouter(t)
	product := models.Product{Title: "Americano", Price: decimal.NewFromFloat(10.00), Stock: 0}
	require.NoError(t, database.DB.Create(&product).Error)

	w := postJSON(t, r, "/api/checkout", gin.H{
		"items":        []gin.H{{"product_id": product.ID, "quantity": 1}},
		"payment_type": "cash",
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "InsufficientStock", resp["code"])
}

func TestProcessCheckoutEmptyCart(t *testing.T) {
	r := setupRouter(t)

	w := postJSON(t, r, "/api/checkout", gin.H{
		"items":        []gin.H{},
		"payment_type": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProductBlockedBySalesHistory(t *testing.T) {
	r := setupRouter(t)
	product := models.Product{Title: "Americano", Price: decimal.NewFromFloat(10.00), Stock: 5}
	require.NoError(t, database.DB.Create(&product).Error)
	sale := models.Sale{
		ReceiptNo:   "R-1",
		PaymentType: "cash",
		Items: []models.SaleItem{
			{ProductID: product.ID, Quantity: 1, Price: product.Price},
		},
	}
	require.NoError(t, database.DB.Create(&sale).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "HasSalesHistory", resp["code"])

	var count int64
	require.NoError(t, database.DB.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
