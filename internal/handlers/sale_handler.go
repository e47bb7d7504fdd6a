package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/inventory"
	"go-retail-pos/internal/models"
	"go-retail-pos/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- GET: /api/sales ---
func ListSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	list, err := sales.ListSales(database.DB, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// --- GET: /api/sales/:id ---
func GetSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Sale ID"})
		return
	}

	sale, err := sales.GetSale(database.DB, uint(id))
	if err != nil {
		if errors.Is(err, sales.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found", "code": "SaleNotFound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sale"})
		return
	}
	c.JSON(http.StatusOK, sale)
}

// AddSaleItemRequest amends an existing sale with one more line.
type AddSaleItemRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required"`
	Price     *decimal.Decimal `json:"price"` // defaults to the product's current price
}

// --- POST: /api/sales/:id/items ---
func AddSaleItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Sale ID"})
		return
	}

	var req AddSaleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	} else {
		var product models.Product
		if err := database.DB.First(&product, req.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "code": "ProductNotFound"})
			return
		}
		price = product.Price
	}

	item, err := sales.AddLineItem(database.DB, uint(id), req.ProductID, req.Quantity, price, CheckoutConfig.TaxRate)
	if err != nil {
		var stockErr *inventory.InsufficientStockError
		switch {
		case errors.Is(err, sales.ErrSaleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found", "code": "SaleNotFound"})
		case errors.Is(err, inventory.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "code": "ProductNotFound"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "InsufficientStock"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

// --- DELETE: /api/sales/items/:itemId ---
// Removing a single line restores its stock unless ?restore_stock=false.
func RemoveSaleItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	restore := c.DefaultQuery("restore_stock", "true") != "false"

	if err := sales.RemoveLineItem(database.DB, uint(id), restore, CheckoutConfig.TaxRate); err != nil {
		if errors.Is(err, sales.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

// --- DELETE: /api/sales/:id ---
// Whole-sale deletion does NOT restore stock by default; pass
// ?restore_stock=true to opt in.
func DeleteSale(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Sale ID"})
		return
	}

	restore := c.Query("restore_stock") == "true"

	if err := sales.DeleteSale(database.DB, uint(id), restore); err != nil {
		if errors.Is(err, sales.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found", "code": "SaleNotFound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted"})
}
