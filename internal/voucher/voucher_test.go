package voucher

import (
	"testing"
	"time"

	"go-retail-pos/internal/database"
	"go-retail-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveFixedVoucher(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:     "SAVE10",
		Type:     "fixed",
		Amount:   money("10"),
		MinTotal: decimal.NewNullDecimal(money("20")),
	}).Error)

	app, err := Resolve(db, "SAVE10", money("50.00"))
	require.NoError(t, err)
	assert.True(t, app.Discount.Equal(money("10")), "got %s", app.Discount)
}

func TestResolvePercentageVoucher(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:   "QUARTER",
		Type:   "percentage",
		Amount: money("25"),
	}).Error)

	app, err := Resolve(db, "QUARTER", money("80.00"))
	require.NoError(t, err)
	assert.True(t, app.Discount.Equal(money("20")), "got %s", app.Discount)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:   "SAVE10",
		Type:   "fixed",
		Amount: money("10"),
	}).Error)

	app, err := Resolve(db, "  save10 ", money("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", app.Voucher.Code)
}

func TestResolveUnknownCode(t *testing.T) {
	db := newTestDB(t)

	_, err := Resolve(db, "NOPE", money("50.00"))
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = Resolve(db, "", money("50.00"))
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestResolveExpired(t *testing.T) {
	db := newTestDB(t)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.Voucher{
		Code:      "OLD",
		Type:      "fixed",
		Amount:    money("5"),
		ExpiresAt: &past,
	}).Error)

	_, err := Resolve(db, "OLD", money("50.00"))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestResolveNotYetExpired(t *testing.T) {
	db := newTestDB(t)
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.Create(&models.Voucher{
		Code:      "FRESH",
		Type:      "fixed",
		Amount:    money("5"),
		ExpiresAt: &future,
	}).Error)

	_, err := Resolve(db, "FRESH", money("50.00"))
	assert.NoError(t, err)
}

func TestResolveBelowMinimum(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:     "SAVE10",
		Type:     "fixed",
		Amount:   money("10"),
		MinTotal: decimal.NewNullDecimal(money("60")),
	}).Error)

	_, err := Resolve(db, "SAVE10", money("50.00"))

	var minErr *BelowMinimumError
	require.ErrorAs(t, err, &minErr)
	assert.True(t, minErr.MinRequired.Equal(money("60")))
	assert.True(t, minErr.CurrentSubtotal.Equal(money("50.00")))
}

func TestResolveMinimumMetExactly(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:     "SAVE10",
		Type:     "fixed",
		Amount:   money("10"),
		MinTotal: decimal.NewNullDecimal(money("50")),
	}).Error)

	_, err := Resolve(db, "SAVE10", money("50.00"))
	assert.NoError(t, err)
}

func TestResolveDoesNotCapAtSubtotal(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:   "BIG",
		Type:   "fixed",
		Amount: money("100"),
	}).Error)

	// Capping is the checkout orchestrator's job, not the evaluator's.
	app, err := Resolve(db, "BIG", money("30.00"))
	require.NoError(t, err)
	assert.True(t, app.Discount.Equal(money("100")))
}

func TestResolveUnknownType(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Voucher{
		Code:   "WEIRD",
		Type:   "bogo",
		Amount: money("10"),
	}).Error)

	_, err := Resolve(db, "WEIRD", money("50.00"))
	assert.Error(t, err)
}
