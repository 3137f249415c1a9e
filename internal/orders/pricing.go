// Package orders prices work orders and schedules their delivery.
package orders

import (
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
)

const (
	UrgentBusinessDays  = 3
	RegularBusinessDays = 7
)

// LineTotal quantity times unit price
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// RecomputeLineTotal returns the total of item after applying a new
// quantity and/or price. Nil inputs keep the current value.
func RecomputeLineTotal(current domain.OrderItem, quantity *int, unitPrice *decimal.Decimal) decimal.Decimal {
	qty := current.Quantity
	if quantity != nil {
		qty = *quantity
	}
	price := current.UnitPrice
	if unitPrice != nil {
		price = *unitPrice
	}
	return LineTotal(qty, price)
}

func isWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// AddBusinessDays moves forward n days skipping Saturdays and Sundays.
// Holidays are not considered.
func AddBusinessDays(t time.Time, n int) time.Time {
	for added := 0; added < n; {
		t = t.AddDate(0, 0, 1)
		if !isWeekend(t) {
			added++
		}
	}
	return t
}

// EstimateDeliveryDate an explicit date wins, otherwise 3 business days
// for urgent orders and 7 for regular ones, counted from created.
func EstimateDeliveryDate(created time.Time, urgent bool, explicit *time.Time) time.Time {
	if explicit != nil {
		return common.DateOnly(*explicit)
	}
	days := RegularBusinessDays
	if urgent {
		days = UrgentBusinessDays
	}
	return AddBusinessDays(common.DateOnly(created), days)
}

// CanTransition reports whether an order may move from one status to
// another. Same status is always allowed and changes nothing.
func CanTransition(from, to domain.OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case domain.OrderPending:
		return to == domain.OrderInProgress || to == domain.OrderCancelled
	case domain.OrderInProgress:
		return to == domain.OrderDone || to == domain.OrderCancelled
	case domain.OrderDone:
		return to == domain.OrderDelivered || to == domain.OrderCancelled
	case domain.OrderDelivered, domain.OrderCancelled:
		return false
	}
	return false
}
