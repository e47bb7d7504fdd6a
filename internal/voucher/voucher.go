package voucher

import (
	"errors"
	"fmt"
	"strings"

	"go-retail-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCode means no voucher exists under the given code.
	ErrInvalidCode = errors.New("invalid voucher code")
	// ErrExpired means the voucher exists but its expiry date has passed.
	ErrExpired = errors.New("voucher expired")
)

// BelowMinimumError reports a subtotal under the voucher's minimum purchase.
type BelowMinimumError struct {
	Code            string
	MinRequired     decimal.Decimal
	CurrentSubtotal decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("voucher %s requires a minimum purchase of %s, cart subtotal is %s",
		e.Code, e.MinRequired.StringFixed(2), e.CurrentSubtotal.StringFixed(2))
}

// Application is the outcome of a successful voucher resolution.
type Application struct {
	Voucher  models.Voucher
	Discount decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Resolve looks up a voucher code against a subtotal and returns the
// discount it grants. Lookup is case-insensitive: codes are stored
// uppercased, so the input is uppercased before the query.
//
// The discount is never negative, but it is NOT capped at the subtotal
// here; capping is the checkout orchestrator's job.
func Resolve(db *gorm.DB, code string, subtotal decimal.Decimal) (*Application, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidCode
	}

	var v models.Voucher
	if err := db.Where("code = ?", code).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	if v.Expired() {
		return nil, ErrExpired
	}

	if v.MinTotal.Valid && subtotal.LessThan(v.MinTotal.Decimal) {
		return nil, &BelowMinimumError{
			Code:            v.Code,
			MinRequired:     v.MinTotal.Decimal,
			CurrentSubtotal: subtotal,
		}
	}

	var discount decimal.Decimal
	switch v.Type {
	case "percentage":
		discount = subtotal.Mul(v.Amount).Div(oneHundred).Round(2)
	case "fixed":
		discount = v.Amount
	default:
		return nil, fmt.Errorf("voucher %s has unknown type %q", v.Code, v.Type)
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return &Application{Voucher: v, Discount: discount}, nil
}
