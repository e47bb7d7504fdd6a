package handlers

import (
	"net/http"
	"time"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalDiscount float64 `json:"total_discount"`
	TotalOrders   int64   `json:"total_orders"`
	TopSelling    []struct {
		ProductTitle string  `json:"product_title"`
		Sold         int     `json:"sold"`
		Revenue      float64 `json:"revenue"`
	} `json:"top_selling"`
	RecentSales []models.Sale `json:"recent_sales"`
}

// --- GET: /api/reports ---
// Accepts optional start/end query params (YYYY-MM-DD); defaults to all time.
func GetSalesReport(c *gin.Context) {
	start := time.Time{}
	end := time.Now().Add(24 * time.Hour)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date, use YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date, use YYYY-MM-DD"})
			return
		}
		end = parsed.Add(24 * time.Hour)
	}

	var data ReportData

	summary, err := database.GetSalesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}
	data.TotalRevenue = summary.TotalRevenue
	data.TotalDiscount = summary.TotalDiscount
	data.TotalOrders = summary.TotalCount

	// Top 5 best sellers across the same window
	err = database.DB.Table("sale_items").
		Select("products.title as product_title, SUM(sale_items.quantity) as sold, SUM(sale_items.quantity * sale_items.price) as revenue").
		Joins("JOIN products ON sale_items.product_id = products.id").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.created_at BETWEEN ? AND ?", start, end).
		Group("products.title").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// Last 10 sales, newest first
	err = database.DB.Preload("Items").Order("created_at desc").Limit(10).Find(&data.RecentSales).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// ValuationItem represents a single row in the valuation table
type ValuationItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalValue float64 `json:"total_value"`
}

// CategoryGroup represents one category's slice of the inventory
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

// ValuationResponse is the final payload sent to the dashboard
type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the monetary value of everything on the shelves
func GetStockValuation(c *gin.Context) {
	var products []models.Product

	if err := database.DB.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	var grandTotal float64
	groupedMap := make(map[string]*CategoryGroup)

	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}

		if _, exists := groupedMap[catName]; !exists {
			groupedMap[catName] = &CategoryGroup{
				CategoryName: catName,
				Items:        []ValuationItem{},
				Subtotal:     0,
			}
		}

		price, _ := p.Price.Float64()
		itemTotal := float64(p.Stock) * price

		groupedMap[catName].Items = append(groupedMap[catName].Items, ValuationItem{
			Title:      p.Title,
			Quantity:   p.Stock,
			UnitPrice:  price,
			TotalValue: itemTotal,
		})

		groupedMap[catName].Subtotal += itemTotal
		grandTotal += itemTotal
	}

	var response ValuationResponse
	response.GrandTotal = grandTotal
	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}

	c.JSON(http.StatusOK, response)
}
