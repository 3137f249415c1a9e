package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a stock item consumed by the lab
type Material struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string              `gorm:"size:200;index;not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal     `gorm:"type:numeric(12,3);not null;default:0" json:"quantity"`
	Unit        string              `gorm:"size:20;not null" json:"unit"`
	UnitPrice   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	MinStock    decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"min_stock"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Material) TableName() string {
	return "material"
}

// LowStock reports quantity <= min_stock. Materials without a threshold are never low.
func (m Material) LowStock() bool {
	return m.MinStock.Valid && m.Quantity.LessThanOrEqual(m.MinStock.Decimal)
}
