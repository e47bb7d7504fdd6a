package sales

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/inventory"
	"go-retail-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrSaleNotFound means the sale row is absent.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrItemNotFound means the line item row is absent.
	ErrItemNotFound = errors.New("sale item not found")
	// ErrNoItems means a sale was submitted without any line items.
	ErrNoItems = errors.New("sale must have at least one line item")
)

// ComputeTotals is the single source of truth for the money math: tax is
// always charged on the discounted subtotal, never on the raw subtotal.
// Every path that writes sale totals (checkout and line-item mutations)
// goes through here.
func ComputeTotals(subtotal, discount, taxRate decimal.Decimal) (tax, total decimal.Decimal) {
	afterDiscount := subtotal.Sub(discount)
	if afterDiscount.IsNegative() {
		afterDiscount = decimal.Zero
	}
	tax = afterDiscount.Mul(taxRate).Round(2)
	total = afterDiscount.Add(tax).Round(2)
	return tax, total
}

// CreateSale validates and inserts a sale header together with its line
// items. Totals are the caller's (the checkout orchestrator computes them
// from the same ComputeTotals helper).
func CreateSale(tx *gorm.DB, sale *models.Sale) error {
	if sale.PaymentType == "" {
		return errors.New("payment type is required")
	}
	if len(sale.Items) == 0 {
		return ErrNoItems
	}
	if sale.Subtotal.IsNegative() || sale.Total.IsNegative() {
		return errors.New("sale totals must be non-negative")
	}
	for _, item := range sale.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("line item for product %d has non-positive quantity %d",
				item.ProductID, item.Quantity)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("line item for product %d has negative price", item.ProductID)
		}
	}

	return tx.Create(sale).Error
}

// GetSale loads a sale with its line items.
func GetSale(db *gorm.DB, saleID uint) (*models.Sale, error) {
	var sale models.Sale
	if err := db.Preload("Items").First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// ListSales returns sale headers, newest first.
func ListSales(db *gorm.DB, limit int) ([]models.Sale, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []models.Sale
	err := db.Preload("Items").Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// AddLineItem appends a line to an existing sale and reserves stock for it.
// If a line for the same (sale, product) already exists, the quantities are
// merged into one row and the price snapshot is overwritten. Totals are
// recomputed afterwards.
func AddLineItem(db *gorm.DB, saleID, productID uint, quantity int, price decimal.Decimal, taxRate decimal.Decimal) (*models.SaleItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if price.IsNegative() {
		return nil, errors.New("price must be non-negative")
	}

	var item models.SaleItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		if err := inventory.ReserveStock(tx, productID, quantity); err != nil {
			return err
		}

		err := tx.Where("sale_id = ? AND product_id = ?", saleID, productID).
			First(&item).Error
		switch {
		case err == nil:
			// Merge into the existing row instead of a duplicate line.
			item.Quantity += quantity
			item.Price = price
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.SaleItem{
				SaleID:    saleID,
				ProductID: productID,
				Quantity:  quantity,
				Price:     price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return RecomputeTotals(tx, saleID, taxRate)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveLineItem deletes one line item. When restoreStock is true (the
// default for item-level deletes) the line's quantity is returned to the
// product's stock. Totals are recomputed; a sale left with no items gets
// zeroed totals rather than stale ones.
func RemoveLineItem(db *gorm.DB, itemID uint, restoreStock bool, taxRate decimal.Decimal) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var item models.SaleItem
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		if restoreStock {
			if err := inventory.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return RecomputeTotals(tx, item.SaleID, taxRate)
	})
}

// RecomputeTotals re-sums the sale's current line items and rewrites
// subtotal, tax and total. The stored discount is reapplied as-is, never
// re-evaluated against the voucher.
func RecomputeTotals(tx *gorm.DB, saleID uint, taxRate decimal.Decimal) error {
	var sale models.Sale
	if err := tx.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		return err
	}

	var items []models.SaleItem
	if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
		return err
	}

	if len(items) == 0 {
		sale.Subtotal = decimal.Zero
		sale.Tax = decimal.Zero
		sale.Total = decimal.Zero
		return tx.Save(&sale).Error
	}

	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}

	sale.Subtotal = subtotal.Round(2)
	sale.Tax, sale.Total = ComputeTotals(sale.Subtotal, sale.Discount, taxRate)
	return tx.Save(&sale).Error
}

// DeleteSale removes a sale and, via the cascade, its line items. Stock
// restoration defaults to off here: bulk sale deletion should not quietly
// refill shelves, unlike single item removal.
func DeleteSale(db *gorm.DB, saleID uint, restoreStock bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		if restoreStock {
			for _, item := range sale.Items {
				if err := inventory.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		// Delete items explicitly as well, for stores where the FK
		// cascade is not enforced (e.g. SQLite without foreign_keys on).
		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
}
