package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderDone       OrderStatus = "done"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderDone, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type ShadeScale string

const (
	ShadeVita   ShadeScale = "vita"
	ShadeVita3D ShadeScale = "vita_3d"
	ShadeOther  ShadeScale = "other"
)

func (s ShadeScale) Valid() bool {
	switch s {
	case ShadeVita, ShadeVita3D, ShadeOther:
		return true
	}
	return false
}

type MaterialKind string

const (
	MaterialZirconia          MaterialKind = "zirconia"
	MaterialLithiumDisilicate MaterialKind = "lithium_disilicate"
	MaterialResin3D           MaterialKind = "resin_3d"
	MaterialDelara            MaterialKind = "delara"
	MaterialTrilux            MaterialKind = "trilux"
	MaterialPremium           MaterialKind = "premium"
	MaterialOther             MaterialKind = "other"
)

func (m MaterialKind) Valid() bool {
	switch m {
	case MaterialZirconia, MaterialLithiumDisilicate, MaterialResin3D,
		MaterialDelara, MaterialTrilux, MaterialPremium, MaterialOther:
		return true
	}
	return false
}

// WorkOrder a job received from a client
type WorkOrder struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID       int64       `gorm:"index;not null" json:"client_id"`
	ProfessionalID *int64      `gorm:"index" json:"professional_id"`
	DeliveryDate   time.Time   `gorm:"type:date;index" json:"delivery_date"`
	Urgent         bool        `gorm:"not null;default:false" json:"urgent"`
	Status         OrderStatus `gorm:"size:20;index;not null" json:"status"`
	Notes          string      `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (WorkOrder) TableName() string {
	return "work_order"
}

// OrderItem is a priced line of a work order. Total is always
// Quantity * UnitPrice.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkOrderID int64           `gorm:"index;not null" json:"work_order_id"`
	ServiceID   int64           `gorm:"index;not null" json:"service_id"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	ToothColor  string          `gorm:"size:20" json:"tooth_color"`
	ShadeScale  ShadeScale      `gorm:"size:20" json:"shade_scale"`
	Material    MaterialKind    `gorm:"size:30" json:"material"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_item"
}

// OrderItemDetail item joined with its service name
type OrderItemDetail struct {
	OrderItem
	ServiceName string `json:"service_name"`
}

// WorkOrderDetail order joined with client and professional names.
// TotalValue is summed from the items at read time.
type WorkOrderDetail struct {
	WorkOrder
	ClientName       string            `json:"client_name"`
	ProfessionalName *string           `json:"professional_name"`
	TotalValue       decimal.Decimal   `gorm:"type:numeric(12,2)" json:"total_value"`
	Items            []OrderItemDetail `gorm:"-" json:"items"`
}
