package models

import "github.com/shopspring/decimal"

// MaxQuantity is the largest stock level a product row can hold (32-bit integer column).
const MaxQuantity = 2147483647

// Product represents a stock item in the inventory.
type Product struct {
	ID       int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string          `json:"name" gorm:"type:varchar(200);not null"`
	SKU      string          `json:"sku" gorm:"column:sku;type:varchar(64);uniqueIndex;not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Quantity int             `json:"quantity" gorm:"not null;check:quantity >= 0"`
}

// ProductDraft carries the raw fields of a product that does not exist yet.
type ProductDraft struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	Quantity int
}

// ProductUpdate carries the fields of a partial update. Nil means "leave unchanged".
type ProductUpdate struct {
	Name     *string
	SKU      *string
	Price    *decimal.Decimal
	Quantity *int
}

// IsEmpty reports whether the update changes nothing.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.SKU == nil && u.Price == nil && u.Quantity == nil
}

// Apply copies the supplied fields of u onto p.
func (p *Product) Apply(u ProductUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.SKU != nil {
		p.SKU = *u.SKU
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
}

// Columns returns the column assignments for the supplied fields, keyed by column name.
func (u ProductUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.SKU != nil {
		cols["sku"] = *u.SKU
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Quantity != nil {
		cols["quantity"] = *u.Quantity
	}
	return cols
}
