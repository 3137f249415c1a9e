package ledger

import (
	"testing"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.Local)
	paid := day(2024, 3, 1)

	tests := []struct {
		name      string
		requested domain.AccountStatus
		due       time.Time
		payment   *time.Time
		want      domain.AccountStatus
	}{
		{"past due without status", "", day(2024, 3, 14), nil, domain.AccountOverdue},
		{"due today is not overdue", "", day(2024, 3, 15), nil, domain.AccountPending},
		{"future due", "", day(2024, 4, 1), nil, domain.AccountPending},
		{"explicit pending is derived", domain.AccountPending, day(2024, 3, 1), nil, domain.AccountOverdue},
		{"payment date wins", domain.AccountPending, day(2024, 3, 1), &paid, domain.AccountPaid},
		{"cancelled kept", domain.AccountCancelled, day(2024, 3, 1), nil, domain.AccountCancelled},
		{"explicit overdue kept", domain.AccountOverdue, day(2024, 5, 1), nil, domain.AccountOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.requested, tt.due, tt.payment, now))
		})
	}
}

func TestIsOverdue(t *testing.T) {
	now := day(2024, 3, 15)
	entry := domain.AccountEntry{Status: domain.AccountPending, DueDate: day(2024, 3, 10)}
	assert.True(t, IsOverdue(entry, now))

	entry.Status = domain.AccountCancelled
	assert.False(t, IsOverdue(entry, now))

	entry.Status = domain.AccountPending
	entry.DueDate = now
	assert.False(t, IsOverdue(entry, now))
}

func TestApplyPatch(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)
	today := day(2024, 3, 15)
	paidOn := day(2024, 3, 12)
	pending := domain.AccountPending
	paidStatus := domain.AccountPaid
	base := domain.AccountEntry{Kind: domain.Receivable, Status: domain.AccountPending, DueDate: day(2024, 3, 10)}

	t.Run("payment date forces paid", func(t *testing.T) {
		fields, err := ApplyPatch(base, Patch{PaymentDate: &paidOn, PaymentDateSet: true, Status: &pending}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountPaid, fields["status"])
		assert.Equal(t, paidOn, fields["payment_date"])
	})

	t.Run("null payment date re-derives", func(t *testing.T) {
		paid := base
		paid.Status = domain.AccountPaid
		paid.PaymentDate = &paidOn
		fields, err := ApplyPatch(paid, Patch{PaymentDateSet: true}, now)
		require.NoError(t, err)
		assert.Contains(t, fields, "payment_date")
		assert.Nil(t, fields["payment_date"])
		assert.Equal(t, domain.AccountOverdue, fields["status"])
	})

	t.Run("paid without date uses today", func(t *testing.T) {
		fields, err := ApplyPatch(base, Patch{Status: &paidStatus}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountPaid, fields["status"])
		assert.Equal(t, today, fields["payment_date"])
	})

	t.Run("non paid status clears payment", func(t *testing.T) {
		paid := base
		paid.Status = domain.AccountPaid
		paid.PaymentDate = &paidOn
		fields, err := ApplyPatch(paid, Patch{Status: &pending}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountPending, fields["status"])
		assert.Contains(t, fields, "payment_date")
		assert.Nil(t, fields["payment_date"])
	})

	t.Run("moving due date re-derives open entries", func(t *testing.T) {
		overdue := base
		overdue.Status = domain.AccountOverdue
		future := day(2024, 4, 1)
		fields, err := ApplyPatch(overdue, Patch{DueDate: &future}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountPending, fields["status"])
	})

	t.Run("plain field", func(t *testing.T) {
		desc := "Coroa 11"
		fields, err := ApplyPatch(base, Patch{Description: &desc}, now)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"description": "Coroa 11"}, fields)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := ApplyPatch(base, Patch{}, now)
		assert.Equal(t, domain.KindNoOpUpdate, domain.KindOf(err))

		negative := decimal.NewFromInt(-1)
		_, err = ApplyPatch(base, Patch{Amount: &negative}, now)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))

		bogus := domain.AccountStatus("pago")
		_, err = ApplyPatch(base, Patch{Status: &bogus}, now)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))

		supplier := "Dental Supply"
		_, err = ApplyPatch(base, Patch{Supplier: &supplier}, now)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}
