package webserver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protechlab/labdesk/internal/domain"
)

func TestIssueTokenClaims(t *testing.T) {
	user := &domain.SysUser{ID: 42, Name: "Ana", Email: "ana@protechlab.com", Role: domain.RoleTechnician}
	now := time.Now()
	signed, err := IssueToken("secret", time.Hour, user, now)
	require.NoError(t, err)

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, domain.RoleTechnician, claims.Role)
	assert.Equal(t, "ana@protechlab.com", claims.Email)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = jwt.ParseWithClaims(signed, new(Claims), func(t *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestIssueTokenExpired(t *testing.T) {
	user := &domain.SysUser{ID: 1, Role: domain.RoleAdmin}
	signed, err := IssueToken("secret", time.Minute, user, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = jwt.ParseWithClaims(signed, new(Claims), func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestWithAuth(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(tokenContextKey, &jwt.Token{Claims: &Claims{
		Name: "Ana", Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.Itoa(7)},
	}})

	var got *AuthContext
	err := withAuth(func(c echo.Context) error {
		got = GetAuth(c)
		return nil
	})(c)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, got.IsAdmin())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	cases := []struct {
		name string
		auth *AuthContext
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"technician", &AuthContext{UserID: 2, Role: domain.RoleTechnician}, http.StatusForbidden},
		{"admin", &AuthContext{UserID: 1, Role: domain.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			if tc.auth != nil {
				c.Set(AuthContextKey, tc.auth)
			}
			require.NoError(t, handler(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", StatusCode(http.StatusNotFound))
	assert.Equal(t, "METHOD_NOT_ALLOWED", StatusCode(http.StatusMethodNotAllowed))
	assert.Equal(t, "INTERNAL_ERROR", StatusCode(http.StatusBadGateway))
}
