package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/protechlab/labdesk/internal/dbtest"
	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(dbtest.Open(t))

	id, err := repo.Create(ctx, &domain.Client{Name: "Clínica Sorriso", Type: domain.ClientClinic})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Client{Name: "Dr. Paulo", Type: domain.ClientProfessional})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Clínica Sorriso", got.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, "client 999 not found", domain.MessageOf(err))

	items, total, err := repo.Search(ctx, ClientFilter{Name: "SORRISO"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)

	items, total, err = repo.Search(ctx, ClientFilter{Type: domain.ClientProfessional})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Dr. Paulo", items[0].Name)

	err = repo.Update(ctx, id, map[string]interface{}{})
	assert.Equal(t, domain.KindNoOpUpdate, domain.KindOf(err))
	err = repo.Update(ctx, 999, map[string]interface{}{"phone": "1"})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	require.NoError(t, repo.Update(ctx, id, map[string]interface{}{"phone": "11 9999-0000"}))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "11 9999-0000", got.Phone)

	require.NoError(t, repo.Delete(ctx, id))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(repo.Delete(ctx, id)))
}

func TestClientDeleteWithOrders(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	clients := NewGormClientRepository(db)
	orders := NewGormOrderRepository(db)

	id, err := clients.Create(ctx, &domain.Client{Name: "Clínica"})
	require.NoError(t, err)
	_, err = orders.CreateOrder(ctx, &domain.WorkOrder{ClientID: id, Status: domain.OrderPending, DeliveryDate: common.DateOnly(time.Now())})
	require.NoError(t, err)

	err = clients.Delete(ctx, id)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(dbtest.Open(t))
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := repo.Create(ctx, &domain.Client{Name: name})
		require.NoError(t, err)
	}
	items, total, err := repo.Search(ctx, ClientFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, "D", items[1].Name)
}

func TestProfessionalsByClient(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	clients := NewGormClientRepository(db)
	repo := NewGormProfessionalRepository(db)

	clinic, err := clients.Create(ctx, &domain.Client{Name: "Clínica"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Professional{Name: "Dra. Ana", ClientID: &clinic})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Professional{Name: "Dr. Solo"})
	require.NoError(t, err)

	missing := int64(77)
	_, err = repo.Create(ctx, &domain.Professional{Name: "Dr. X", ClientID: &missing})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	list, err := repo.ListByClient(ctx, clinic)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dra. Ana", list[0].Name)

	_, err = repo.ListByClient(ctx, missing)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestServicesActiveAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormServiceRepository(dbtest.Open(t))

	crown, err := repo.Create(ctx, &domain.LabService{Name: "Coroa", Price: decimal.NewFromInt(150), Active: true})
	require.NoError(t, err)
	inlay, err := repo.Create(ctx, &domain.LabService{Name: "Inlay", Price: decimal.NewFromInt(90), Active: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.LabService{Name: "Old", Active: false})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.LabService{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	active, total, err := repo.Search(ctx, ServiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, active, 2)

	require.NoError(t, repo.Deactivate(ctx, inlay))
	_, total, err = repo.Search(ctx, ServiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	_, total, err = repo.Search(ctx, ServiceFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	require.NoError(t, repo.HardDelete(ctx, crown))
	_, err = repo.GetByID(ctx, crown)
	assert.True(t, domain.IsNotFound(err))
}

func TestMaterialStock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormMaterialRepository(dbtest.Open(t))

	zr, err := repo.Create(ctx, &domain.Material{
		Name:     "Bloco zircônia",
		Unit:     "un",
		Quantity: decimal.NewFromInt(10),
		MinStock: decimal.NewNullDecimal(decimal.NewFromInt(3)),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Material{Name: "Resina", Unit: "ml", Quantity: decimal.Zero})
	require.NoError(t, err)

	low, err := repo.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low, "resin has no threshold")

	m, err := repo.AdjustStock(ctx, zr, decimal.NewFromInt(-7))
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(decimal.NewFromInt(3)), m.Quantity.String())
	assert.True(t, m.LowStock())

	low, err = repo.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, zr, low[0].ID)

	_, err = repo.AdjustStock(ctx, zr, decimal.NewFromInt(-4))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = repo.AdjustStock(ctx, 999, decimal.NewFromInt(1))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	m, err = repo.AdjustStock(ctx, zr, decimal.NewFromFloat(2.5))
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(decimal.NewFromFloat(5.5)), m.Quantity.String())
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewGormNotificationRepository(dbtest.Open(t))
	ana, bia := int64(1), int64(2)

	_, err := repo.Create(ctx, &domain.Notification{Title: "Broadcast", Message: "m", Category: domain.CategorySystem})
	require.NoError(t, err)
	own, err := repo.Create(ctx, &domain.Notification{UserID: &ana, Title: "Ana", Message: "m", Category: domain.CategoryWorkOrder})
	require.NoError(t, err)
	other, err := repo.Create(ctx, &domain.Notification{UserID: &bia, Title: "Bia", Message: "m", Category: domain.CategoryStock})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Notification{Title: "x", Message: "m", Category: "weird"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	list, total, err := repo.ListForUser(ctx, NotificationFilter{UserID: ana})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	require.NoError(t, repo.MarkRead(ctx, ana, own))
	assert.True(t, domain.IsNotFound(repo.MarkRead(ctx, ana, other)), "another user's notification")

	_, total, err = repo.ListForUser(ctx, NotificationFilter{UserID: ana, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	n, err := repo.MarkAllRead(ctx, ana)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.MarkAllRead(ctx, ana)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	purged, err := repo.PurgeRead(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	_, total, err = repo.ListForUser(ctx, NotificationFilter{UserID: bia})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.NoError(t, repo.DeleteForUser(ctx, bia, other))
}

func TestUserCredentials(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(dbtest.Open(t))

	id, err := repo.CreateWithPassword(ctx, &domain.SysUser{Name: "Admin", Email: "Admin@Lab.com", Role: domain.RoleAdmin}, "senha123")
	require.NoError(t, err)

	_, err = repo.CreateWithPassword(ctx, &domain.SysUser{Name: "Dup", Email: "admin@lab.com", Role: domain.RoleAssistant}, "x")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = repo.CreateWithPassword(ctx, &domain.SysUser{Name: "R", Email: "r@lab.com", Role: "root"}, "x")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	user, err := repo.VerifyCredentials(ctx, "admin@lab.com", "senha123")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Nil(t, user.LastAccess)

	_, err = repo.VerifyCredentials(ctx, "admin@lab.com", "wrong")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	_, err = repo.VerifyCredentials(ctx, "nobody@lab.com", "senha123")
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	require.NoError(t, repo.TouchLastAccess(ctx, id, time.Now()))
	require.NoError(t, repo.Update(ctx, id, map[string]interface{}{"password": "nova"}))
	user, err = repo.VerifyCredentials(ctx, "admin@lab.com", "nova")
	require.NoError(t, err)
	assert.NotNil(t, user.LastAccess)
}

func TestAccountsMarkOverdue(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewGormAccountRepository(db)
	clientID, err := NewGormClientRepository(db).Create(ctx, &domain.Client{Name: "Clínica"})
	require.NoError(t, err)

	today := common.DateOnly(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	paidAt := yesterday

	for _, e := range []*domain.AccountEntry{
		{Kind: domain.Receivable, ClientID: &clientID, Description: "late", Amount: decimal.NewFromInt(10), IssueDate: yesterday, DueDate: yesterday, Status: domain.AccountPending},
		{Kind: domain.Receivable, ClientID: &clientID, Description: "today", Amount: decimal.NewFromInt(10), IssueDate: today, DueDate: today, Status: domain.AccountPending},
		{Kind: domain.Receivable, ClientID: &clientID, Description: "paid", Amount: decimal.NewFromInt(10), IssueDate: yesterday, DueDate: yesterday, PaymentDate: &paidAt, Status: domain.AccountPaid},
		{Kind: domain.Payable, Supplier: "Dental Supply", Description: "late payable", Amount: decimal.NewFromInt(10), IssueDate: yesterday, DueDate: yesterday, Status: domain.AccountPending},
	} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	n, err := repo.MarkOverdue(ctx, domain.Receivable, today)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.MarkOverdue(ctx, domain.Receivable, today)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	list, total, err := repo.List(ctx, AccountFilter{Kind: domain.Receivable, Status: domain.AccountOverdue})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "late", list[0].Description)
	require.NotNil(t, list[0].ClientName)
	assert.Equal(t, "Clínica", *list[0].ClientName)

	payables, _, err := repo.List(ctx, AccountFilter{Kind: domain.Payable, Supplier: "supply"})
	require.NoError(t, err)
	require.Len(t, payables, 1)
	assert.Nil(t, payables[0].ClientName)

	_, err = repo.GetByID(ctx, domain.Payable, list[0].ID)
	assert.Equal(t, "payable "+strconv.FormatInt(list[0].ID, 10)+" not found", domain.MessageOf(err))
}

func TestOrderDetailTotals(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewGormOrderRepository(db)
	clientID, err := NewGormClientRepository(db).Create(ctx, &domain.Client{Name: "Clínica"})
	require.NoError(t, err)
	serviceID, err := NewGormServiceRepository(db).Create(ctx, &domain.LabService{Name: "Coroa", Price: decimal.NewFromInt(150), Active: true})
	require.NoError(t, err)

	var orderID int64
	err = repo.Transaction(ctx, func(tx OrderRepository) error {
		id, err := tx.CreateOrder(ctx, &domain.WorkOrder{ClientID: clientID, Status: domain.OrderPending, DeliveryDate: common.DateOnly(time.Now())})
		if err != nil {
			return err
		}
		orderID = id
		for _, qty := range []int{3, 1} {
			price := decimal.NewFromInt(150)
			if err := tx.CreateItem(ctx, &domain.OrderItem{WorkOrderID: id, ServiceID: serviceID, Quantity: qty, UnitPrice: price, Total: price.Mul(decimal.NewFromInt(int64(qty)))}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	detail, err := repo.GetDetail(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "Clínica", detail.ClientName)
	assert.Nil(t, detail.ProfessionalName)
	assert.True(t, detail.TotalValue.Equal(decimal.NewFromInt(600)), detail.TotalValue.String())
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Coroa", detail.Items[0].ServiceName)

	price, err := repo.ServicePrice(ctx, serviceID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(150)))
	_, err = repo.ServicePrice(ctx, 999)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	n, err := repo.DeleteItems(ctx, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	details, total, err := repo.ListDetails(ctx, OrderFilter{ClientID: &clientID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.True(t, details[0].TotalValue.IsZero())
	assert.Empty(t, details[0].Items)
}
