package inventory

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/models"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when the product row is absent (for
// example, concurrently deleted).
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a reservation that lost the race for the
// remaining units. Available is the stock observed at failure time.
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// ReserveStock atomically decrements a product's stock, but only if enough
// is left. The guard lives in the UPDATE itself ("stock >= qty"), so two
// checkouts racing for the last units can never both win: the loser sees
// zero affected rows and gets InsufficientStockError.
func ReserveStock(tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		// Either the product is gone or there is not enough stock left.
		// Re-read to tell the caller which.
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		return &InsufficientStockError{
			ProductID: product.ID,
			Available: product.Stock,
			Requested: quantity,
		}
	}

	return nil
}

// RestoreStock unconditionally increments stock, used on cancellations and
// returns. No upper bound is enforced: restoring the same line twice will
// inflate stock past the original count.
func RestoreStock(tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", quantity)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
