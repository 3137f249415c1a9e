package orders

import (
	"testing"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	price := decimal.RequireFromString("150.00")
	assert.True(t, LineTotal(3, price).Equal(decimal.RequireFromString("450.00")))

	item := domain.OrderItem{Quantity: 3, UnitPrice: price}
	five := 5
	assert.True(t, RecomputeLineTotal(item, &five, nil).Equal(decimal.RequireFromString("750.00")))

	newPrice := decimal.RequireFromString("99.90")
	assert.True(t, RecomputeLineTotal(item, nil, &newPrice).Equal(decimal.RequireFromString("299.70")))
	assert.True(t, RecomputeLineTotal(item, &five, &newPrice).Equal(decimal.RequireFromString("499.50")))
}

func TestAddBusinessDays(t *testing.T) {
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	assert.Equal(t, time.Friday, friday.Weekday())

	tests := []struct {
		start time.Time
		n     int
		want  time.Time
	}{
		{friday, 1, time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)},
		{friday, 3, time.Date(2024, 3, 6, 0, 0, 0, 0, time.Local)},
		{friday, 7, time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)},
		{time.Date(2024, 3, 2, 0, 0, 0, 0, time.Local), 1, time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)},
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local), 0, time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddBusinessDays(tt.start, tt.n), "%s +%d", tt.start.Format("Mon 2006-01-02"), tt.n)
	}
}

func TestEstimateDeliveryDate(t *testing.T) {
	friday := time.Date(2024, 3, 1, 15, 30, 0, 0, time.Local)

	urgent := EstimateDeliveryDate(friday, true, nil)
	assert.Equal(t, time.Wednesday, urgent.Weekday())
	assert.Equal(t, "2024-03-06", urgent.Format("2006-01-02"))

	regular := EstimateDeliveryDate(friday, false, nil)
	assert.Equal(t, time.Tuesday, regular.Weekday())
	assert.Equal(t, "2024-03-12", regular.Format("2006-01-02"))

	explicit := time.Date(2024, 3, 9, 13, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-03-09", EstimateDeliveryDate(friday, true, &explicit).Format("2006-01-02"))
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]domain.OrderStatus{
		{domain.OrderPending, domain.OrderInProgress},
		{domain.OrderInProgress, domain.OrderDone},
		{domain.OrderDone, domain.OrderDelivered},
		{domain.OrderPending, domain.OrderCancelled},
		{domain.OrderInProgress, domain.OrderCancelled},
		{domain.OrderDone, domain.OrderCancelled},
		{domain.OrderDelivered, domain.OrderDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]domain.OrderStatus{
		{domain.OrderPending, domain.OrderDone},
		{domain.OrderPending, domain.OrderDelivered},
		{domain.OrderDone, domain.OrderPending},
		{domain.OrderDelivered, domain.OrderCancelled},
		{domain.OrderCancelled, domain.OrderPending},
		{domain.OrderDelivered, domain.OrderInProgress},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}
