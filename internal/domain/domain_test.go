package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	err := NotFoundError("client", 42)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "client 42 not found", MessageOf(err))
	assert.True(t, IsNotFound(err))

	wrapped := errors.Wrap(ValidationError("amount must be >= 0"), "create receivable")
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "amount must be >= 0", MessageOf(wrapped))

	cause := fmt.Errorf("dial tcp: connection refused")
	store := StoreUnavailableError(cause)
	assert.Equal(t, KindStoreUnavailable, KindOf(store))
	assert.Equal(t, "database unavailable", MessageOf(store))
	assert.ErrorIs(t, store, cause)

	assert.Equal(t, KindNoOpUpdate, KindOf(NoOpUpdateError()))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, "internal server error", MessageOf(fmt.Errorf("plain")))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, OrderInProgress.Valid())
	assert.False(t, OrderStatus("em_andamento").Valid())
	assert.True(t, AccountOverdue.Valid())
	assert.False(t, AccountStatus("").Valid())
	assert.True(t, Payable.Valid())
	assert.False(t, AccountKind("other").Valid())
	assert.True(t, ShadeVita3D.Valid())
	assert.True(t, MaterialLithiumDisilicate.Valid())
	assert.False(t, MaterialKind("gold").Valid())
	assert.True(t, ClientClinic.Valid())
	assert.True(t, CategoryStock.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, UserRole("root").Valid())
}

func TestMaterialLowStock(t *testing.T) {
	m := Material{Quantity: decimal.NewFromInt(5)}
	assert.False(t, m.LowStock(), "no threshold")

	m.MinStock = decimal.NewNullDecimal(decimal.NewFromInt(5))
	assert.True(t, m.LowStock())

	m.Quantity = decimal.NewFromFloat(5.5)
	assert.False(t, m.LowStock())
}

func TestUserPasswordNotSerialized(t *testing.T) {
	data, err := json.Marshal(SysUser{Name: "Ana", Email: "ana@lab.com", Role: RoleAdmin, PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}

func TestDecimalJSONUnquoted(t *testing.T) {
	data, err := json.Marshal(LabService{Name: "Coroa", Price: decimal.RequireFromString("150.00")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":150`)
}
