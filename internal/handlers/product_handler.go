package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- GET: List all products ---
func GetProducts(c *gin.Context) {
	var products []models.Product

	result := database.DB.Order("title").Find(&products)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// --- GET: Single product ---
func GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProductRequest is the admin payload for a new product
type CreateProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}

// --- POST: Add a new product ---
func AddProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
		return
	}
	if req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must be non-negative"})
		return
	}

	product := models.Product{
		Title:       req.Title,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
	}

	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create product. Title may already exist."})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProductRequest lists exactly which fields an admin edit may touch.
// Pointer fields distinguish "not sent" from "set to zero", so partial
// updates never need a raw key-value pass-through.
type UpdateProductRequest struct {
	Title       *string          `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

// --- PUT: Update product fields ---
func UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		product.Title = title
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be non-negative"})
			return
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must be non-negative"})
			return
		}
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := database.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product ---
// Blocked while any sale line references the product, so invoices keep
// resolving. The admin should zero the stock instead.
func DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var references int64
	if err := database.DB.Model(&models.SaleItem{}).
		Where("product_id = ?", id).
		Count(&references).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check sales history"})
		return
	}

	if references > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product has sales history and cannot be deleted. Set its stock to 0 instead.",
			"code":  "HasSalesHistory",
		})
		return
	}

	result := database.DB.Delete(&models.Product{}, id)
	if result.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- UPLOAD: Handle Image Files ---
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// Generate a safe unique filename, e.g. "167890123_burger.jpg"
	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), file.Filename)
	filepath := "./uploads/" + filename

	if err := c.SaveUploadedFile(file, filepath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	fullURL := baseURL + "/uploads/" + filename
	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     fullURL,
	})
}
