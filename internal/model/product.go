package model

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Nullable columns mean "not tracked": a nil
// StockQuantity is a product without inventory accounting, a nil CategoryID a
// product not yet filed under a category.
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity *int            `json:"stock_quantity"`
	ImageURL      string          `json:"image_url" gorm:"size:512"`
	Rating        *float64        `json:"rating"`
	SKU           *string         `json:"sku" gorm:"column:sku;size:255"`
	CategoryID    *uint           `json:"category_id" gorm:"index"`

	// Relation, eager-loaded on catalog listings.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName keeps the table name the storefront schema uses.
func (Product) TableName() string {
	return "products"
}
