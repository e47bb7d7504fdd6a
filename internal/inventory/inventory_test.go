package inventory

import (
	"testing"

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
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Title: "Americano",
		Price: decimal.NewFromFloat(10.00),
		Stock: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func currentStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.Stock
}

func TestReserveStockDecrements(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	require.NoError(t, ReserveStock(db, product.ID, 3))
	assert.Equal(t, 2, currentStock(t, db, product.ID))
}

func TestReserveStockExactlyDepletes(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	require.NoError(t, ReserveStock(db, product.ID, 5))
	assert.Equal(t, 0, currentStock(t, db, product.ID))
}

func TestReserveStockInsufficient(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 2)

	err := ReserveStock(db, product.ID, 3)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, currentStock(t, db, product.ID), "failed reservation must not touch stock")
}

func TestReserveStockAtZero(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 0)

	err := ReserveStock(db, product.ID, 1)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, currentStock(t, db, product.ID))
}

func TestReserveStockMissingProduct(t *testing.T) {
	db := newTestDB(t)

	err := ReserveStock(db, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReserveStockRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	assert.Error(t, ReserveStock(db, product.ID, 0))
	assert.Error(t, ReserveStock(db, product.ID, -1))
	assert.Equal(t, 5, currentStock(t, db, product.ID))
}

func TestLastUnitGoesToExactlyOneCaller(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 1)

	first := ReserveStock(db, product.ID, 1)
	second := ReserveStock(db, product.ID, 1)

	require.NoError(t, first)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, second, &stockErr)
	assert.Equal(t, 0, currentStock(t, db, product.ID))
}

func TestRestoreStockRoundTrip(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 7)

	require.NoError(t, ReserveStock(db, product.ID, 4))
	require.NoError(t, RestoreStock(db, product.ID, 4))

	assert.Equal(t, 7, currentStock(t, db, product.ID))
}

func TestRestoreStockIsUnbounded(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	// No cap against an original count: restoring twice inflates stock.
	require.NoError(t, RestoreStock(db, product.ID, 3))
	require.NoError(t, RestoreStock(db, product.ID, 3))

	assert.Equal(t, 11, currentStock(t, db, product.ID))
}

func TestRestoreStockMissingProduct(t *testing.T) {
	db := newTestDB(t)

	err := RestoreStock(db, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
