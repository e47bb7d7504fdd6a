package handlers

import (
	"errors"
	"net/http"

	"go-retail-pos/internal/checkout"
	"go-retail-pos/internal/database"
	"go-retail-pos/internal/inventory"
	"go-retail-pos/internal/loyalty"
	"go-retail-pos/internal/voucher"

	"github.com/gin-gonic/gin"
)

// CheckoutConfig is loaded once in main and shared by the handlers that
// need the tax/loyalty constants.
var CheckoutConfig = checkout.DefaultConfig()

// --- POST: /api/checkout ---
// Drives the whole cart-to-sale workflow and translates the typed failures
// into HTTP responses the storefront can act on.
func ProcessCheckout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "EmptyCart"})
		return
	}

	// The authenticated user is the acting cashier unless the payload
	// names one explicitly.
	if req.CashierID == nil {
		if userID, ok := c.Get("userID"); ok {
			id := userID.(uint)
			req.CashierID = &id
		}
	}

	svc := checkout.NewService(database.DB, CheckoutConfig)
	sale, warnings, err := svc.Checkout(req)
	if err != nil {
		status, code := checkoutErrorResponse(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	resp := gin.H{
		"message": "Sale successful!",
		"sale":    sale,
	}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

// checkoutErrorResponse maps a checkout failure to an HTTP status and a
// stable machine-readable code.
func checkoutErrorResponse(err error) (int, string) {
	var stockErr *inventory.InsufficientStockError
	var pointsErr *loyalty.InsufficientPointsError
	var minErr *voucher.BelowMinimumError
	var qtyErr *checkout.InvalidQuantityError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, "EmptyCart"
	case errors.Is(err, checkout.ErrPaymentTypeRequired):
		return http.StatusBadRequest, "InvalidPaymentType"
	case errors.As(err, &qtyErr):
		return http.StatusBadRequest, "InvalidQuantity"
	case errors.As(err, &stockErr):
		return http.StatusConflict, "InsufficientStock"
	case errors.Is(err, inventory.ErrProductNotFound):
		return http.StatusNotFound, "ProductNotFound"
	case errors.Is(err, voucher.ErrInvalidCode):
		return http.StatusBadRequest, "InvalidVoucher"
	case errors.Is(err, voucher.ErrExpired):
		return http.StatusBadRequest, "VoucherExpired"
	case errors.As(err, &minErr):
		return http.StatusBadRequest, "BelowMinimumPurchase"
	case errors.As(err, &pointsErr):
		return http.StatusBadRequest, "InsufficientPoints"
	case errors.Is(err, loyalty.ErrInvalidAmount):
		return http.StatusBadRequest, "InvalidPointAmount"
	case errors.Is(err, loyalty.ErrUserNotFound):
		return http.StatusBadRequest, "UserNotFound"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// --- GET: /api/me/points ---
// Storefront widget showing the logged-in user's loyalty balance.
func GetMyPoints(c *gin.Context) {
	userID, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	var points int
	err := database.DB.Table("users").
		Select("points").
		Where("id = ?", userID).
		Scan(&points).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}
