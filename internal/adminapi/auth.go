package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *domain.SysUser `json:"user"`
}

func registerAuthRoutes() {
	webserver.PublicPOST("/auth/login", loginHandler)
	webserver.ApiPOST("/auth/logout", logoutHandler)
	webserver.ApiGET("/auth/me", currentUserHandler)
}

// loginHandler exchanges credentials for a token
// @Summary login
// @Tags Auth
// @Param credentials body loginPayload true "Credentials"
// @Success 200 {object} loginResponse
// @Router /api/v1/auth/login [post]
func loginHandler(c echo.Context) error {
	var payload loginPayload
	if _, err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}

	ctx := c.Request().Context()
	users := repository.NewGormUserRepository(GetDB(c))
	user, err := users.VerifyCredentials(ctx, strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		return failErr(c, err)
	}

	cfg := GetAppContext(c).Config()
	now := time.Now()
	ttl := time.Duration(cfg.Web.TokenTTL) * time.Hour
	token, err := webserver.IssueToken(cfg.Web.Secret, ttl, user, now)
	if err != nil {
		return failErr(c, err)
	}
	if err := webserver.SaveSessionToken(c, token, ttl); err != nil {
		zap.L().Warn("login session not saved", zap.Error(err))
	}
	if err := users.TouchLastAccess(ctx, user.ID, now); err != nil {
		zap.L().Warn("last access not updated", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastAccess = &now
	}

	zap.L().Info("user logged in", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return ok(c, loginResponse{Token: token, ExpiresAt: now.Add(ttl), User: user})
}

func logoutHandler(c echo.Context) error {
	if err := webserver.ClearSessionToken(c); err != nil {
		zap.L().Warn("logout session not cleared", zap.Error(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func currentUserHandler(c echo.Context) error {
	auth := webserver.GetAuth(c)
	if auth == nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
	}
	user, err := repository.NewGormUserRepository(GetDB(c)).GetByID(c.Request().Context(), auth.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}
