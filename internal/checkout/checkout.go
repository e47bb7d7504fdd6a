package checkout

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-retail-pos/internal/inventory"
	"go-retail-pos/internal/loyalty"
	"go-retail-pos/internal/models"
	"go-retail-pos/internal/sales"
	"go-retail-pos/internal/voucher"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrEmptyCart means the checkout was submitted with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentTypeRequired means no payment label was supplied.
	ErrPaymentTypeRequired = errors.New("payment type is required")
)

// InvalidQuantityError reports a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID uint
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %d", e.Quantity, e.ProductID)
}

// CartItem is one (product, quantity) selection from the storefront.
type CartItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// Request is the checkout payload from the presentation layer.
type Request struct {
	Items          []CartItem `json:"items" binding:"required"`
	PaymentType    string     `json:"payment_type" binding:"required"`
	VoucherCode    string     `json:"voucher_code"`
	PointsToRedeem int        `json:"points_to_redeem"`
	CashierID      *uint      `json:"cashier_id"`
}

// Service drives a cart through validation, discounting, sale creation and
// stock reservation as one unit of work against the injected database.
type Service struct {
	db  *gorm.DB
	cfg Config
}

func NewService(db *gorm.DB, cfg Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// Checkout converts a cart into a persisted sale.
//
// Everything up to and including stock reservation runs in one
// transaction: any failure rolls the whole thing back, so no sale row,
// line item or stock decrement ever survives alone. The loyalty-point
// debit and accrual deliberately run AFTER the commit; their failures are
// logged and returned as warnings, never undone against the durable
// sale. That mirrors the source system, where points were fire-and-forget
// calls from the UI.
func (s *Service) Checkout(req Request) (*models.Sale, []string, error) {
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.PaymentType) == "" {
		return nil, nil, ErrPaymentTypeRequired
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, nil, &InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
	}

	var sale models.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Pass 1: lock every product row, verify stock, and build the
		// subtotal from price snapshots. Nothing is mutated yet, so the
		// first failing line aborts with no partial reservation.
		subtotal := decimal.Zero
		items := make([]models.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return inventory.ErrProductNotFound
				}
				return err
			}

			if product.Stock < line.Quantity {
				return &inventory.InsufficientStockError{
					ProductID: product.ID,
					Available: product.Stock,
					Requested: line.Quantity,
				}
			}

			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.SaleItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
		}
		subtotal = subtotal.Round(2)

		// Discounts: a bad voucher is fatal for the whole checkout, never
		// silently skipped.
		discount := decimal.Zero
		var voucherCode *string
		if req.VoucherCode != "" {
			app, err := voucher.Resolve(tx, req.VoucherCode, subtotal)
			if err != nil {
				return err
			}
			discount = app.Discount
			voucherCode = &app.Voucher.Code
		}

		// Points: dry-run only. The actual debit happens post-commit. The
		// combined discount is capped at the subtotal here, so
		// voucherDiscount + pointsDiscount never exceeds it.
		if req.PointsToRedeem > 0 {
			if req.CashierID == nil {
				return loyalty.ErrUserNotFound
			}
			if err := loyalty.Validate(tx, *req.CashierID, req.PointsToRedeem); err != nil {
				return err
			}
			pointsDiscount := loyalty.DiscountFor(req.PointsToRedeem, s.cfg.PointsPerCurrency)
			remaining := subtotal.Sub(discount)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			if pointsDiscount.GreaterThan(remaining) {
				pointsDiscount = remaining
			}
			discount = discount.Add(pointsDiscount)
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}

		tax, total := sales.ComputeTotals(subtotal, discount, s.cfg.TaxRate)

		sale = models.Sale{
			ReceiptNo:   newReceiptNo(),
			Subtotal:    subtotal,
			Tax:         tax,
			Discount:    discount.Round(2),
			Total:       total,
			PaymentType: req.PaymentType,
			VoucherCode: voucherCode,
			CashierID:   req.CashierID,
			Items:       items,
		}
		if err := sales.CreateSale(tx, &sale); err != nil {
			return err
		}

		// Reserve stock line by line. The conditional update is the real
		// guard: if another checkout grabbed the units between our lock
		// pass and here, the zero-row update fails and everything in this
		// transaction rolls back.
		for _, item := range sale.Items {
			if err := inventory.ReserveStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.settlePoints(req, sale.ID)

	persisted, err := sales.GetSale(s.db, sale.ID)
	if err != nil {
		return nil, warnings, err
	}
	return persisted, warnings, nil
}

// settlePoints runs the post-commit loyalty side effects. Failures here
// cannot roll back the sale; they are logged and surfaced as a
// degraded-success notice.
func (s *Service) settlePoints(req Request, saleID uint) []string {
	if req.CashierID == nil {
		return nil
	}

	var warnings []string

	if req.PointsToRedeem > 0 {
		if _, err := loyalty.Redeem(s.db, *req.CashierID, req.PointsToRedeem, s.cfg.PointsPerCurrency); err != nil {
			log.Printf("Sale %d committed but point redemption failed for user %d: %v",
				saleID, *req.CashierID, err)
			warnings = append(warnings, "point redemption failed; sale is recorded")
		}
	}

	if s.cfg.PointsRewardPerSale > 0 {
		if _, err := loyalty.Accrue(s.db, *req.CashierID, s.cfg.PointsRewardPerSale); err != nil {
			log.Printf("Sale %d committed but point accrual failed for user %d: %v",
				saleID, *req.CashierID, err)
			warnings = append(warnings, "point accrual failed; sale is recorded")
		}
	}

	return warnings
}

func newReceiptNo() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
