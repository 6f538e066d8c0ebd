package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the inclusive stock level at or below which a medicine is low on stock.
const LowStockThreshold = 10

// Category groups medicines. Its Name is the natural key referenced by Medicine.Category.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields a caller supplies when creating a category.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "is required")
	}
	return nil
}

// Medicine is a single stocked medicine.
type Medicine struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Dosage        string           `json:"dosage"`
	Manufacturer  string           `json:"manufacturer"`
	ExpiryDate    Date             `json:"expiry_date"`
	StockQuantity int              `json:"stock_quantity"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Description   *string          `json:"description,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate checks required fields and value ranges. It does not check the
// category reference; that needs the store.
func (m *Medicine) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(m.Category) == "":
		return invalid("category", "is required")
	case strings.TrimSpace(m.Dosage) == "":
		return invalid("dosage", "is required")
	case strings.TrimSpace(m.Manufacturer) == "":
		return invalid("manufacturer", "is required")
	case m.ExpiryDate.IsZero():
		return invalid("expiry_date", "is required")
	case m.StockQuantity < 0:
		return invalid("stock_quantity", "must be greater than or equal to 0")
	case m.Price != nil && m.Price.IsNegative():
		return invalid("price", "must be greater than or equal to 0")
	}
	return nil
}

// IsExpired reports whether the expiry date is on or before today.
func (m *Medicine) IsExpired(today Date) bool {
	return !m.ExpiryDate.After(today)
}

func (m *Medicine) IsLowStock() bool {
	return m.StockQuantity <= LowStockThreshold
}

// MedicineUpdate carries the fields to change; nil fields are left as they are.
// ClearPrice and ClearDescription remove the optional values and win over Price and Description.
type MedicineUpdate struct {
	Name          *string
	Category      *string
	Dosage        *string
	Manufacturer  *string
	ExpiryDate    *Date
	StockQuantity *int
	Price         *decimal.Decimal
	Description   *string

	ClearPrice       bool
	ClearDescription bool
}

// IsEmpty reports whether the update changes nothing.
func (u MedicineUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Dosage == nil && u.Manufacturer == nil &&
		u.ExpiryDate == nil && u.StockQuantity == nil && u.Price == nil && u.Description == nil &&
		!u.ClearPrice && !u.ClearDescription
}

// Apply returns a copy of m with the update's fields applied.
func (u MedicineUpdate) Apply(m Medicine) Medicine {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.Dosage != nil {
		m.Dosage = *u.Dosage
	}
	if u.Manufacturer != nil {
		m.Manufacturer = *u.Manufacturer
	}
	if u.ExpiryDate != nil {
		m.ExpiryDate = *u.ExpiryDate
	}
	if u.StockQuantity != nil {
		m.StockQuantity = *u.StockQuantity
	}
	switch {
	case u.ClearPrice:
		m.Price = nil
	case u.Price != nil:
		p := *u.Price
		m.Price = &p
	}
	switch {
	case u.ClearDescription:
		m.Description = nil
	case u.Description != nil:
		d := *u.Description
		m.Description = &d
	}
	return m
}

// DefaultCategories are seeded into an empty store at startup.
func DefaultCategories() []Category {
	desc := func(s string) *string { return &s }
	return []Category{
		{Name: "antibiotics", Description: desc("Antibiotic medications")},
		{Name: "antipyretics", Description: desc("Reduce fever")},
		{Name: "painkillers", Description: desc("Pain relief medications")},
		{Name: "vitamins", Description: desc("Vitamin supplements")},
		{Name: "antacids", Description: desc("Stomach acid relief")},
	}
}
