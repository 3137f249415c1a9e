package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabService is an entry of the price catalogue. Services are retired by
// clearing Active rather than deleted, so old orders keep their reference.
type LabService struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:200;index;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Active      bool            `gorm:"index;not null;default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (LabService) TableName() string {
	return "lab_service"
}
