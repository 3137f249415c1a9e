package app

import (
	"context"
	"testing"

	"github.com/protechlab/labdesk/config"
	"github.com/protechlab/labdesk/internal/dbtest"
	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *Application {
	cfg := config.DefaultAppConfig()
	cfg.Web.Secret = "test-secret"
	a := NewApplication(cfg)
	a.OverrideDB(dbtest.Open(t))
	a.Bootstrap()
	return a
}

func TestBootstrapSeedsOnce(t *testing.T) {
	a := newTestApp(t)
	a.Bootstrap()

	ctx := context.Background()
	users := repository.NewGormUserRepository(a.DB())
	admin, err := users.VerifyCredentials(ctx, "admin@protechlab.com", "senha123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	tech, err := users.GetByEmail(ctx, technicianEmail)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, tech.Role)

	_, total, err := users.Search(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = repository.NewGormServiceRepository(a.DB()).Search(ctx, repository.ServiceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, len(defaultServices), total)
}

func TestCheckSuperRepairsRole(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	users := repository.NewGormUserRepository(a.DB())

	admin, err := users.GetByEmail(ctx, a.Config().Web.AdminEmail)
	require.NoError(t, err)
	require.NoError(t, users.Update(ctx, admin.ID, map[string]interface{}{"role": domain.RoleAssistant}))

	a.checkSuper()
	admin, err = users.GetByEmail(ctx, a.Config().Web.AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestEventsReachNotifier(t *testing.T) {
	a := newTestApp(t)
	require.NotNil(t, a.Bus())
	require.NotNil(t, a.Notifier())

	a.Bus().Publish(notify.TopicStockLow, notify.StockEvent{Material: domain.Material{ID: 1, Name: "Resina", Unit: "ml", Quantity: decimal.NewFromInt(1)}})

	items, total, err := repository.NewGormNotificationRepository(a.DB()).ListForUser(context.Background(), repository.NotificationFilter{UserID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, domain.CategoryStock, items[0].Category)
}

func TestScheduledJobs(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := repository.NewGormMaterialRepository(a.DB()).Create(ctx, &domain.Material{
		Name: "Gesso", Unit: "kg", Quantity: decimal.NewFromInt(1), MinStock: decimal.NewNullDecimal(decimal.NewFromInt(2)),
	})
	require.NoError(t, err)

	assert.NotPanics(t, a.SchedLowStockDigest)
	assert.NotPanics(t, a.SchedPurgeNotifications)

	_, total, err := repository.NewGormNotificationRepository(a.DB()).ListForUser(ctx, repository.NotificationFilter{UserID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "digest written, unread notifications kept")
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db/lab", postgresDSN(config.DBConfig{URL: "postgres://u:p@db/lab"}))
	assert.Contains(t, postgresDSN(config.DBConfig{Host: "db", Port: 5432, User: "u", Passwd: "p", Name: "lab"}), "host=db port=5432 user=u password=p dbname=lab")

	assert.Equal(t, "file:/var/labdesk/data/labdesk.db?_loc=auto&_busy_timeout=5000", sqliteDSN(config.DBConfig{Name: "labdesk.db"}, "/var/labdesk"))
	assert.Equal(t, "file:/tmp/x.db?_loc=auto&_busy_timeout=5000", sqliteDSN(config.DBConfig{Name: "/tmp/x.db"}, "/var/labdesk"))
}
