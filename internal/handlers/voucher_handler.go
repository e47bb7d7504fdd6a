package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// voucherView adds the derived status to the stored fields.
type voucherView struct {
	models.Voucher
	Status string `json:"status"` // 'active' or 'expired'
}

func viewOf(v models.Voucher) voucherView {
	status := "active"
	if v.Expired() {
		status = "expired"
	}
	return voucherView{Voucher: v, Status: status}
}

// --- GET: /api/vouchers ---
func ListVouchers(c *gin.Context) {
	var vouchers []models.Voucher
	if err := database.DB.Order("code").Find(&vouchers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vouchers"})
		return
	}

	views := make([]voucherView, 0, len(vouchers))
	for _, v := range vouchers {
		views = append(views, viewOf(v))
	}
	c.JSON(http.StatusOK, views)
}

// CreateVoucherRequest is the admin payload for a new discount rule.
type CreateVoucherRequest struct {
	Code      string           `json:"code" binding:"required"`
	Type      string           `json:"type" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	MinTotal  *decimal.Decimal `json:"min_total"`
	ExpiresAt *time.Time       `json:"expires_at"`
}

// --- POST: /api/vouchers ---
func CreateVoucher(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code is required"})
		return
	}

	if req.Type != "percentage" && req.Type != "fixed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type must be 'percentage' or 'fixed'"})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}
	if req.Type == "percentage" && req.Amount.GreaterThan(decimal.NewFromInt(100)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Percentage amount cannot exceed 100"})
		return
	}

	voucher := models.Voucher{
		Code:      code,
		Type:      req.Type,
		Amount:    req.Amount,
		ExpiresAt: req.ExpiresAt,
	}
	if req.MinTotal != nil {
		voucher.MinTotal = decimal.NewNullDecimal(*req.MinTotal)
	}

	if err := database.DB.Create(&voucher).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create voucher. Code may already exist."})
		return
	}

	c.JSON(http.StatusCreated, viewOf(voucher))
}

// --- POST: /api/vouchers/:id/expire ---
// Vouchers referenced by sales are never hard-deleted; expiring them keeps
// old receipts resolvable while blocking new redemptions.
func ExpireVoucher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Voucher ID"})
		return
	}

	var voucher models.Voucher
	if err := database.DB.First(&voucher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	now := time.Now()
	voucher.ExpiresAt = &now
	if err := database.DB.Save(&voucher).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expire voucher"})
		return
	}

	c.JSON(http.StatusOK, viewOf(voucher))
}

// --- DELETE: /api/vouchers/:id ---
func DeleteVoucher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Voucher ID"})
		return
	}

	var voucher models.Voucher
	if err := database.DB.First(&voucher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		return
	}

	var references int64
	if err := database.DB.Model(&models.Sale{}).
		Where("voucher_code = ?", voucher.Code).
		Count(&references).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check voucher usage"})
		return
	}

	if references > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Voucher has been used on sales and cannot be deleted. Expire it instead.",
			"code":  "HasSalesHistory",
		})
		return
	}

	if err := database.DB.Delete(&voucher).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voucher"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted"})
}
