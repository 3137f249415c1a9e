package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type servicePayload struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
}

// registerServiceRoutes registers the price catalogue endpoints
func registerServiceRoutes() {
	webserver.ApiGET("/services", listServices)
	webserver.ApiGET("/services/:id", getService)
	webserver.ApiPOST("/services", createService)
	webserver.ApiPUT("/services/:id", updateService)
	webserver.ApiDELETE("/services/:id", deleteService)
}

// listServices returns the active catalogue, all=true includes retired entries
// @Summary list services
// @Tags Services
// @Param q query string false "Name substring"
// @Param all query bool false "Include inactive services"
// @Success 200 {object} ListResponse
// @Router /api/v1/services [get]
func listServices(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := repository.NewGormServiceRepository(GetDB(c)).Search(c.Request().Context(), repository.ServiceFilter{
		Name:            strings.TrimSpace(c.QueryParam("q")),
		IncludeInactive: queryBool(c, "all"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "service")
	}
	s, err := repository.NewGormServiceRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, s)
}

func createService(c echo.Context) error {
	var payload servicePayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "name", "price"); err != nil {
		return failErr(c, err)
	}

	s := domain.LabService{
		Name:        strValue(payload.Name),
		Description: strValue(payload.Description),
		Price:       *payload.Price,
		Active:      payload.Active == nil || *payload.Active,
	}
	id, err := repository.NewGormServiceRepository(GetDB(c)).Create(c.Request().Context(), &s)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("service created", zap.Int64("id", id), zap.String("name", s.Name))
	return created(c, id)
}

func updateService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "service")
	}
	var payload servicePayload
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
	setString(fields, raw, "description", payload.Description)
	if has(raw, "price") {
		if payload.Price == nil || payload.Price.IsNegative() {
			return failErr(c, domain.ValidationError("price must be zero or positive"))
		}
		fields["price"] = *payload.Price
	}
	if has(raw, "active") {
		if payload.Active == nil {
			return failErr(c, domain.ValidationError("active cannot be null"))
		}
		fields["active"] = *payload.Active
	}

	repo := repository.NewGormServiceRepository(GetDB(c))
	ctx := c.Request().Context()
	if err := repo.Update(ctx, id, fields); err != nil {
		return failErr(c, err)
	}
	s, err := repo.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, s)
}

// deleteService retires a service, hard=true removes it when no order uses it
func deleteService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "service")
	}
	repo := repository.NewGormServiceRepository(GetDB(c))
	hard := queryBool(c, "hard")
	if hard {
		err = repo.HardDelete(c.Request().Context(), id)
	} else {
		err = repo.Deactivate(c.Request().Context(), id)
	}
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("service deleted", zap.Int64("id", id), zap.Bool("hard", hard))
	return ok(c, map[string]interface{}{"id": id, "deleted": hard, "active": false})
}
