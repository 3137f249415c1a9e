package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type userPayload struct {
	Name     *string          `json:"name" validate:"omitempty,max=200"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Role     *domain.UserRole `json:"role"`
	Password *string          `json:"password" validate:"omitempty,min=6"`
}

// registerUserRoutes staff accounts, writes are reserved to admins
func registerUserRoutes() {
	adminOnly := webserver.RequireRole(domain.RoleAdmin)
	webserver.ApiGET("/users", listUsers)
	webserver.ApiGET("/users/:id", getUser)
	webserver.ApiPOST("/users", createUser, adminOnly)
	webserver.ApiPUT("/users/:id", updateUser, adminOnly)
	webserver.ApiDELETE("/users/:id", deleteUser, adminOnly)
}

func listUsers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	f := repository.UserFilter{
		Name:     strings.TrimSpace(c.QueryParam("q")),
		Role:     domain.UserRole(c.QueryParam("role")),
		Page:     page,
		PageSize: pageSize,
	}
	if f.Role != "" && !f.Role.Valid() {
		return failErr(c, domain.ValidationError("invalid role %q", f.Role))
	}
	rows, total, err := repository.NewGormUserRepository(GetDB(c)).Search(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}
	user, err := repository.NewGormUserRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}

func createUser(c echo.Context) error {
	var payload userPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "name", "email", "password"); err != nil {
		return failErr(c, err)
	}
	user := domain.SysUser{
		Name:  strValue(payload.Name),
		Email: strValue(payload.Email),
		Role:  domain.RoleAssistant,
	}
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	id, err := repository.NewGormUserRepository(GetDB(c)).CreateWithPassword(c.Request().Context(), &user, *payload.Password)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("user created", zap.Int64("id", id), zap.String("role", string(user.Role)))
	return created(c, id)
}

func updateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}
	var payload userPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}

	fields := map[string]interface{}{}
	if has(raw, "name") {
		if strValue(payload.Name) == "" {
			return failErr(c, domain.ValidationError("name cannot be empty"))
		}
		fields["name"] = strValue(payload.Name)
	}
	if has(raw, "email") {
		if strValue(payload.Email) == "" {
			return failErr(c, domain.ValidationError("email cannot be empty"))
		}
		fields["email"] = strValue(payload.Email)
	}
	if has(raw, "role") {
		if payload.Role == nil || !payload.Role.Valid() {
			return failErr(c, domain.ValidationError("invalid role"))
		}
		if id == webserver.GetAuth(c).UserID && *payload.Role != domain.RoleAdmin {
			return failErr(c, domain.ValidationError("cannot remove your own admin role"))
		}
		fields["role"] = *payload.Role
	}
	if has(raw, "password") {
		if payload.Password == nil || *payload.Password == "" {
			return failErr(c, domain.ValidationError("password cannot be empty"))
		}
		fields["password"] = *payload.Password
	}

	repo := repository.NewGormUserRepository(GetDB(c))
	ctx := c.Request().Context()
	if err := repo.Update(ctx, id, fields); err != nil {
		return failErr(c, err)
	}
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "user")
	}
	if id == webserver.GetAuth(c).UserID {
		return failErr(c, domain.ValidationError("cannot delete your own account"))
	}
	if err := repository.NewGormUserRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	zap.L().Info("user deleted", zap.Int64("id", id))
	return ok(c, map[string]interface{}{"id": id})
}
