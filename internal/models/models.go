package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - Staff and customers. Points is the loyalty balance; it is only
// touched through the loyalty ledger, never written directly by handlers.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex;size:100" json:"email"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'user'
	Points       int       `gorm:"not null;default:0" json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory. Stock never goes below zero: all decrements go
// through the inventory ledger's conditional update.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"uniqueIndex;size:150" json:"title"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Voucher - A named discount rule. Codes are stored uppercased and looked up
// case-insensitively. Status (active/expired) is derived from ExpiresAt,
// never stored.
type Voucher struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	Code      string              `gorm:"uniqueIndex;size:50" json:"code"`
	Type      string              `json:"type"` // 'percentage' or 'fixed'
	Amount    decimal.Decimal     `gorm:"type:decimal(10,2)" json:"amount"`
	MinTotal  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"min_total"`
	ExpiresAt *time.Time          `json:"expires_at"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Expired reports whether the voucher can no longer be redeemed.
func (v *Voucher) Expired() bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(time.Now())
}

// Sale - The Transaction Header. Totals are always recomputed from the
// current line items; VoucherCode is a weak reference by code, not a
// foreign key.
type Sale struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReceiptNo   string          `gorm:"uniqueIndex;size:60" json:"receipt_no"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:decimal(10,2)" json:"tax"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	PaymentType string          `json:"payment_type"`
	VoucherCode *string         `gorm:"size:50" json:"voucher_code"`
	CashierID   *uint           `json:"cashier_id"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SaleItem - The specific items in a sale. Price is a snapshot of the unit
// price at time of sale; its existence implies the matching stock decrement
// was applied.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"index;not null" json:"sale_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   Product         `gorm:"constraint:OnDelete:RESTRICT" json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}

// LineTotal is quantity * unit price.
func (i *SaleItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
