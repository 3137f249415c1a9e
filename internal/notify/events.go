package notify

import (
	"time"

	"github.com/protechlab/labdesk/internal/domain"
)

// Event bus topics
const (
	TopicOrderCreated = "order:created"
	TopicOrderStatus  = "order:status"
	TopicStockLow     = "stock:low"
	TopicOverdue      = "accounts:overdue"
	TopicPaid         = "accounts:paid"
)

// OrderEvent published when an order is created or changes status
type OrderEvent struct {
	OrderID      int64
	ClientID     int64
	Status       domain.OrderStatus
	Previous     domain.OrderStatus
	Urgent       bool
	DeliveryDate time.Time
}

// StockEvent published when an adjustment leaves a material at or under its minimum
type StockEvent struct {
	Material domain.Material
}

// OverdueEvent published after a sweep that flagged entries
type OverdueEvent struct {
	Receivable int64
	Payable    int64
}

// PaymentEvent published when an entry is registered as paid
type PaymentEvent struct {
	Entry domain.AccountEntry
}
