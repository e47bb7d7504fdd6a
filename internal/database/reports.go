package database

import (
	"time"

	"go-retail-pos/internal/models"
)

// SalesReportResult holds the aggregates the dashboard and the assistant need
type SalesReportResult struct {
	TotalRevenue  float64
	TotalDiscount float64
	TotalCount    int64
}

// GetSalesReport calculates sales within a specific date range
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := DB.Model(&models.Sale{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.TotalRevenue).Error

	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Sale{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(discount), 0)").
		Scan(&result.TotalDiscount).Error

	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Sale{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&result.TotalCount).Error

	if err != nil {
		return nil, err
	}

	return &result, nil
}
