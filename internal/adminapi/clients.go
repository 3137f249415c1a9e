package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type clientPayload struct {
	Name    *string            `json:"name" validate:"omitempty,max=200"`
	Type    *domain.ClientType `json:"type"`
	Address *string            `json:"address" validate:"omitempty,max=500"`
	Phone   *string            `json:"phone" validate:"omitempty,max=50"`
	Email   *string            `json:"email" validate:"omitempty,max=200"`
	Notes   *string            `json:"notes"`
}

func registerClientRoutes() {
	webserver.ApiGET("/clients", listClients)
	webserver.ApiGET("/clients/:id", getClient)
	webserver.ApiGET("/clients/:id/professionals", listClientProfessionals)
	webserver.ApiPOST("/clients", createClient)
	webserver.ApiPUT("/clients/:id", updateClient)
	webserver.ApiDELETE("/clients/:id", deleteClient)
}

// listClients
// @Summary list clients
// @Tags Clients
// @Param q query string false "Name substring"
// @Param type query string false "clinic or professional"
// @Success 200 {object} ListResponse
// @Router /api/v1/clients [get]
func listClients(c echo.Context) error {
	page, pageSize := parsePagination(c)
	f := repository.ClientFilter{
		Name:     strings.TrimSpace(c.QueryParam("q")),
		Type:     domain.ClientType(c.QueryParam("type")),
		Page:     page,
		PageSize: pageSize,
	}
	if f.Type != "" && !f.Type.Valid() {
		return failErr(c, domain.ValidationError("invalid client type %q", f.Type))
	}
	rows, total, err := repository.NewGormClientRepository(GetDB(c)).Search(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "client")
	}
	client, err := repository.NewGormClientRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, client)
}

func listClientProfessionals(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "client")
	}
	rows, err := repository.NewGormProfessionalRepository(GetDB(c)).ListByClient(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, rows)
}

// createClient
// @Summary create a client
// @Tags Clients
// @Param client body clientPayload true "Client"
// @Success 201 {object} CreatedResponse
// @Router /api/v1/clients [post]
func createClient(c echo.Context) error {
	var payload clientPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "name"); err != nil {
		return failErr(c, err)
	}

	client := domain.Client{
		Name:    strValue(payload.Name),
		Type:    domain.ClientClinic,
		Address: strValue(payload.Address),
		Phone:   strValue(payload.Phone),
		Email:   strValue(payload.Email),
		Notes:   strValue(payload.Notes),
	}
	if payload.Type != nil {
		client.Type = *payload.Type
	}
	if !client.Type.Valid() {
		return failErr(c, domain.ValidationError("invalid client type %q", client.Type))
	}

	id, err := repository.NewGormClientRepository(GetDB(c)).Create(c.Request().Context(), &client)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("client created", zap.Int64("id", id))
	return created(c, id)
}

func updateClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "client")
	}
	var payload clientPayload
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
	if has(raw, "type") {
		if payload.Type == nil || !payload.Type.Valid() {
			return failErr(c, domain.ValidationError("invalid client type"))
		}
		fields["type"] = *payload.Type
	}
	setString(fields, raw, "address", payload.Address)
	setString(fields, raw, "phone", payload.Phone)
	setString(fields, raw, "email", payload.Email)
	setString(fields, raw, "notes", payload.Notes)

	repo := repository.NewGormClientRepository(GetDB(c))
	ctx := c.Request().Context()
	if err := repo.Update(ctx, id, fields); err != nil {
		return failErr(c, err)
	}
	client, err := repo.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, client)
}

func deleteClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "client")
	}
	if err := repository.NewGormClientRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	zap.L().Info("client deleted", zap.Int64("id", id))
	return ok(c, map[string]interface{}{"id": id})
}
