package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type professionalPayload struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	ClientID *int64  `json:"client_id"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,max=200"`
	Notes    *string `json:"notes"`
}

func registerProfessionalRoutes() {
	webserver.ApiGET("/professionals", listProfessionals)
	webserver.ApiGET("/professionals/:id", getProfessional)
	webserver.ApiPOST("/professionals", createProfessional)
	webserver.ApiPUT("/professionals/:id", updateProfessional)
	webserver.ApiDELETE("/professionals/:id", deleteProfessional)
}

func listProfessionals(c echo.Context) error {
	page, pageSize := parsePagination(c)
	clientID, err := queryInt64(c, "client_id")
	if err != nil {
		return failErr(c, err)
	}
	rows, total, err := repository.NewGormProfessionalRepository(GetDB(c)).Search(c.Request().Context(), repository.ProfessionalFilter{
		Name:     strings.TrimSpace(c.QueryParam("q")),
		ClientID: clientID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getProfessional(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "professional")
	}
	p, err := repository.NewGormProfessionalRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func createProfessional(c echo.Context) error {
	var payload professionalPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "name"); err != nil {
		return failErr(c, err)
	}

	p := domain.Professional{
		Name:     strValue(payload.Name),
		ClientID: payload.ClientID,
		Phone:    strValue(payload.Phone),
		Email:    strValue(payload.Email),
		Notes:    strValue(payload.Notes),
	}
	id, err := repository.NewGormProfessionalRepository(GetDB(c)).Create(c.Request().Context(), &p)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("professional created", zap.Int64("id", id))
	return created(c, id)
}

func updateProfessional(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "professional")
	}
	var payload professionalPayload
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
	if has(raw, "client_id") {
		fields["client_id"] = payload.ClientID
	}
	setString(fields, raw, "phone", payload.Phone)
	setString(fields, raw, "email", payload.Email)
	setString(fields, raw, "notes", payload.Notes)

	repo := repository.NewGormProfessionalRepository(GetDB(c))
	ctx := c.Request().Context()
	if err := repo.Update(ctx, id, fields); err != nil {
		return failErr(c, err)
	}
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func deleteProfessional(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "professional")
	}
	if err := repository.NewGormProfessionalRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
