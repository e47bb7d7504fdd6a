package loyalty

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidAmount means a non-positive point count was requested.
	ErrInvalidAmount = errors.New("point amount must be positive")
	// ErrUserNotFound means the user row is absent.
	ErrUserNotFound = errors.New("user not found")
)

// InsufficientPointsError reports a redemption larger than the balance.
type InsufficientPointsError struct {
	UserID    uint
	Balance   int
	Requested int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("user %d has %d points, cannot redeem %d",
		e.UserID, e.Balance, e.Requested)
}

// Redemption is the outcome of a successful point redemption.
type Redemption struct {
	DiscountAmount  decimal.Decimal
	RemainingPoints int
}

// DiscountFor converts points to a currency discount at the configured
// ratio (pointsPerCurrency points = 1 unit of currency).
func DiscountFor(points, pointsPerCurrency int) decimal.Decimal {
	return decimal.NewFromInt(int64(points)).
		Div(decimal.NewFromInt(int64(pointsPerCurrency))).
		Round(2)
}

// Redeem debits points from a user's balance and returns the currency
// discount they are worth. The debit is a single conditional update
// ("points >= ?"), mirroring the stock reservation, so the balance can
// never go negative under concurrent redemptions.
func Redeem(db *gorm.DB, userID uint, points, pointsPerCurrency int) (*Redemption, error) {
	if points <= 0 {
		return nil, ErrInvalidAmount
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return nil, &InsufficientPointsError{
			UserID:    user.ID,
			Balance:   user.Points,
			Requested: points,
		}
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	return &Redemption{
		DiscountAmount:  DiscountFor(points, pointsPerCurrency),
		RemainingPoints: user.Points,
	}, nil
}

// Validate checks a redemption without debiting anything. The checkout
// orchestrator uses this as a dry run before committing the sale.
func Validate(db *gorm.DB, userID uint, points int) error {
	if points <= 0 {
		return ErrInvalidAmount
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if points > user.Points {
		return &InsufficientPointsError{
			UserID:    user.ID,
			Balance:   user.Points,
			Requested: points,
		}
	}
	return nil
}

// Accrue unconditionally adds reward points to a user's balance and
// returns the new balance.
func Accrue(db *gorm.DB, userID uint, points int) (int, error) {
	if points <= 0 {
		return 0, ErrInvalidAmount
	}

	res := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", points))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.Points, nil
}
