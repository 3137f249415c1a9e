package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/protechlab/labdesk/internal/dbtest"
	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	now      time.Time
	clientID int64
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	clientID, err := repository.NewGormClientRepository(db).Create(context.Background(), &domain.Client{Name: "Clínica Sorriso"})
	require.NoError(t, err)

	f := &fixture{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local), clientID: clientID}
	f.svc = NewService(repository.NewGormAccountRepository(db)).WithClock(func() time.Time { return f.now })
	return f
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.Receivable, Input{Description: "x"})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, "required fields missing: client_id, amount, due_date", domain.MessageOf(err))

	due := day(2024, 3, 10)
	_, err = f.svc.Create(ctx, domain.Payable, Input{Description: "x", Amount: amount(1), DueDate: &due})
	assert.Equal(t, "required fields missing: supplier", domain.MessageOf(err))

	_, err = f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "x", Amount: amount(-5), DueDate: &due})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	missing := int64(404)
	_, err = f.svc.Create(ctx, domain.Receivable, Input{ClientID: &missing, Description: "x", Amount: amount(5), DueDate: &due})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "zero", Amount: amount(0), DueDate: &due})
	assert.NoError(t, err, "zero amount is accepted")
}

func TestCreateDerivesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := day(2024, 2, 20)
	entry, err := f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "late", Amount: amount(100), DueDate: &past})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountOverdue, entry.Status)
	assert.True(t, entry.IssueDate.Equal(day(2024, 3, 1)))

	future := day(2024, 3, 20)
	entry, err = f.svc.Create(ctx, domain.Payable, Input{Supplier: "Dental Supply", Description: "blocks", Amount: amount(300), DueDate: &future})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountPending, entry.Status)

	entry, err = f.svc.Create(ctx, domain.Payable, Input{Supplier: "Dental Supply", Description: "paid", Amount: amount(10), DueDate: &future, Status: domain.AccountPaid})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountPaid, entry.Status)
	require.NotNil(t, entry.PaymentDate)
	assert.True(t, entry.PaymentDate.Equal(day(2024, 3, 1)))
}

func TestSweepOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := day(2024, 3, 5)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "open", Amount: amount(50), DueDate: &due})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, domain.Payable, Input{Supplier: "Lab Parts", Description: "open", Amount: amount(50), DueDate: &due})
	require.NoError(t, err)

	res, err := f.svc.SweepAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Receivable)
	assert.EqualValues(t, 0, res.Payable)

	f.now = time.Date(2024, 3, 6, 8, 0, 0, 0, time.Local)
	n, err := f.svc.SweepOverdue(ctx, domain.Receivable)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = f.svc.SweepOverdue(ctx, domain.Receivable)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "second sweep changes nothing")

	res, err = f.svc.SweepAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Receivable)
	assert.EqualValues(t, 1, res.Payable)
	assert.Equal(t, f.now, res.RanAt)
}

func TestUpdateAndPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := day(2024, 3, 10)
	entry, err := f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "coroa", Amount: amount(450), DueDate: &due})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, domain.Receivable, entry.ID, Patch{})
	assert.Equal(t, domain.KindNoOpUpdate, domain.KindOf(err))
	desc := "x"
	_, err = f.svc.Update(ctx, domain.Receivable, 9999, Patch{Description: &desc})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = f.svc.Update(ctx, domain.Payable, entry.ID, Patch{Description: &desc})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err), "kind scopes the id")

	paidOn := day(2024, 3, 8)
	pending := domain.AccountPending
	updated, err := f.svc.Update(ctx, domain.Receivable, entry.ID, Patch{PaymentDate: &paidOn, PaymentDateSet: true, Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
	assert.True(t, updated.PaymentDate.Equal(paidOn))

	updated, err = f.svc.Update(ctx, domain.Receivable, entry.ID, Patch{PaymentDateSet: true})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountPending, updated.Status)
	assert.Nil(t, updated.PaymentDate)

	paid, err := f.svc.RegisterPayment(ctx, domain.Receivable, entry.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountPaid, paid.Status)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, paid.PaymentDate.Equal(day(2024, 3, 1)))

	f.now = f.now.AddDate(0, 0, 3)
	again, err := f.svc.RegisterPayment(ctx, domain.Receivable, entry.ID, nil)
	require.NoError(t, err)
	assert.True(t, again.PaymentDate.Equal(*paid.PaymentDate), "registering twice keeps the date")

	_, err = f.svc.RegisterPayment(ctx, domain.Receivable, 9999, nil)
	assert.True(t, domain.IsNotFound(err))
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := day(2024, 3, 10)
	entry, err := f.svc.Create(ctx, domain.Receivable, Input{ClientID: &f.clientID, Description: "coroa", Amount: amount(450), DueDate: &due})
	require.NoError(t, err)

	detail, err := f.svc.GetDetailed(ctx, domain.Receivable, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.ClientName)
	assert.Equal(t, "Clínica Sorriso", *detail.ClientName)

	list, total, err := f.svc.List(ctx, repository.AccountFilter{Kind: domain.Receivable, ClientID: &f.clientID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	_, _, err = f.svc.List(ctx, repository.AccountFilter{Kind: domain.Receivable, Status: "aberto"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	require.NoError(t, f.svc.Delete(ctx, domain.Receivable, entry.ID))
	assert.True(t, domain.IsNotFound(f.svc.Delete(ctx, domain.Receivable, entry.ID)))
}
