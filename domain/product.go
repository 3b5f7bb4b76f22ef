package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Description string           `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	SalePrice   *decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2)" json:"sale_price"`
	Stock       int              `gorm:"column:stock;not null;default:0" json:"stock"`
	Status      string           `gorm:"column:status;default:active" json:"status"`
	CategoryID  *uint            `gorm:"column:category_id" json:"category_id"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// UnitPrice is the price a buyer actually pays: the sale price when one is set,
// the normal price otherwise.
func (p Product) UnitPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type ProductFilters struct {
	Status     string
	PublicOnly bool
	CategoryID uint
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}
