package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type materialPayload struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        *string          `json:"unit" validate:"omitempty,max=20"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	MinStock    *decimal.Decimal `json:"min_stock"`
}

type adjustPayload struct {
	Delta *decimal.Decimal `json:"delta"`
}

func registerMaterialRoutes() {
	webserver.ApiGET("/materials", listMaterials)
	webserver.ApiGET("/materials/:id", getMaterial)
	webserver.ApiPOST("/materials", createMaterial)
	webserver.ApiPUT("/materials/:id", updateMaterial)
	webserver.ApiDELETE("/materials/:id", deleteMaterial)
	webserver.ApiPOST("/materials/:id/adjust", adjustMaterial)
}

// listMaterials
// @Summary list materials
// @Tags Materials
// @Param q query string false "Name substring"
// @Param low_stock query bool false "Only materials at or under their minimum"
// @Success 200 {object} ListResponse
// @Router /api/v1/materials [get]
func listMaterials(c echo.Context) error {
	page, pageSize := parsePagination(c)
	rows, total, err := repository.NewGormMaterialRepository(GetDB(c)).Search(c.Request().Context(), repository.MaterialFilter{
		Name:     strings.TrimSpace(c.QueryParam("q")),
		LowStock: queryBool(c, "low_stock", "estoque_baixo"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getMaterial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "material")
	}
	m, err := repository.NewGormMaterialRepository(GetDB(c)).GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, m)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func createMaterial(c echo.Context) error {
	var payload materialPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "name", "quantity", "unit"); err != nil {
		return failErr(c, err)
	}

	m := domain.Material{
		Name:        strValue(payload.Name),
		Description: strValue(payload.Description),
		Quantity:    *payload.Quantity,
		Unit:        strValue(payload.Unit),
		UnitPrice:   nullDecimal(payload.UnitPrice),
		MinStock:    nullDecimal(payload.MinStock),
	}
	id, err := repository.NewGormMaterialRepository(GetDB(c)).Create(c.Request().Context(), &m)
	if err != nil {
		return failErr(c, err)
	}
	if m.LowStock() {
		publish(c, notify.TopicStockLow, notify.StockEvent{Material: m})
	}
	return created(c, id)
}

func updateMaterial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "material")
	}
	var payload materialPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}

	fields := map[string]interface{}{}
	for _, key := range []string{"name", "unit"} {
		if !has(raw, key) {
			continue
		}
		val := payload.Name
		if key == "unit" {
			val = payload.Unit
		}
		if strValue(val) == "" {
			return failErr(c, domain.ValidationError("%s cannot be empty", key))
		}
		fields[key] = strValue(val)
	}
	setString(fields, raw, "description", payload.Description)
	if has(raw, "quantity") {
		if payload.Quantity == nil || payload.Quantity.IsNegative() {
			return failErr(c, domain.ValidationError("quantity must be >= 0"))
		}
		fields["quantity"] = *payload.Quantity
	}
	if has(raw, "unit_price") {
		fields["unit_price"] = nullDecimal(payload.UnitPrice)
	}
	if has(raw, "min_stock") {
		fields["min_stock"] = nullDecimal(payload.MinStock)
	}

	repo := repository.NewGormMaterialRepository(GetDB(c))
	ctx := c.Request().Context()
	if err := repo.Update(ctx, id, fields); err != nil {
		return failErr(c, err)
	}
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err)
	}
	if m.LowStock() && (has(raw, "quantity") || has(raw, "min_stock")) {
		publish(c, notify.TopicStockLow, notify.StockEvent{Material: *m})
	}
	return ok(c, m)
}

func deleteMaterial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "material")
	}
	if err := repository.NewGormMaterialRepository(GetDB(c)).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

// adjustMaterial adds delta to the stock, a negative delta consumes it
// @Summary adjust stock
// @Tags Materials
// @Param id path int true "Material ID"
// @Param adjustment body adjustPayload true "Delta"
// @Success 200 {object} domain.Material
// @Router /api/v1/materials/{id}/adjust [post]
func adjustMaterial(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "material")
	}
	var payload adjustPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "delta"); err != nil {
		return failErr(c, err)
	}

	m, err := repository.NewGormMaterialRepository(GetDB(c)).AdjustStock(c.Request().Context(), id, *payload.Delta)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("stock adjusted", zap.Int64("id", id), zap.String("delta", payload.Delta.String()),
		zap.String("quantity", m.Quantity.String()))
	if m.LowStock() {
		publish(c, notify.TopicStockLow, notify.StockEvent{Material: *m})
	}
	return ok(c, m)
}
