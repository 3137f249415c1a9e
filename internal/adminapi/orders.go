package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/protechlab/labdesk/internal/orders"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
	"github.com/protechlab/labdesk/pkg/common"
)

type orderItemPayload struct {
	ID         *int64               `json:"id"`
	ServiceID  *int64               `json:"service_id"`
	Quantity   *int                 `json:"quantity"`
	ToothColor *string              `json:"tooth_color" validate:"omitempty,max=20"`
	ShadeScale *domain.ShadeScale   `json:"shade_scale"`
	Material   *domain.MaterialKind `json:"material"`
	UnitPrice  *decimal.Decimal     `json:"unit_price"`
	Notes      *string              `json:"notes"`
}

type orderPayload struct {
	ClientID       *int64              `json:"client_id"`
	ProfessionalID *int64              `json:"professional_id"`
	DeliveryDate   *time.Time          `json:"delivery_date"`
	Urgent         *bool               `json:"urgent"`
	Status         *domain.OrderStatus `json:"status"`
	Notes          *string             `json:"notes"`
	Items          []orderItemPayload  `json:"items" validate:"dive"`
}

type estimatePayload struct {
	Urgent bool `json:"urgent"`
}

type estimateResponse struct {
	Urgent       bool   `json:"urgent"`
	DeliveryDate string `json:"delivery_date"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiGET("/orders/:id/items", listOrderItems)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPOST("/orders/estimate", estimateOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

func orderService(c echo.Context) *orders.Service {
	return orders.NewService(repository.NewGormOrderRepository(GetDB(c)))
}

func (p orderItemPayload) input() orders.ItemInput {
	return orders.ItemInput{
		ID:         p.ID,
		ServiceID:  p.ServiceID,
		Quantity:   p.Quantity,
		ToothColor: p.ToothColor,
		ShadeScale: p.ShadeScale,
		Material:   p.Material,
		UnitPrice:  p.UnitPrice,
		Notes:      p.Notes,
	}
}

func itemInputs(items []orderItemPayload) []orders.ItemInput {
	inputs := make([]orders.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, item.input())
	}
	return inputs
}

// listOrders
// @Summary list work orders
// @Tags Orders
// @Param status query string false "Order status"
// @Param client_id query int false "Client ID"
// @Param professional_id query int false "Professional ID"
// @Param urgent query bool false "Urgent only"
// @Param detailed query bool false "Include client name, total and items"
// @Success 200 {object} ListResponse
// @Router /api/v1/orders [get]
func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	f := repository.OrderFilter{
		Status:   domain.OrderStatus(c.QueryParam("status")),
		Page:     page,
		PageSize: pageSize,
	}
	var err error
	if f.ClientID, err = queryInt64(c, "client_id"); err != nil {
		return failErr(c, err)
	}
	if f.ProfessionalID, err = queryInt64(c, "professional_id"); err != nil {
		return failErr(c, err)
	}
	if c.QueryParam("urgent") != "" {
		urgent := queryBool(c, "urgent")
		f.Urgent = &urgent
	}

	svc := orderService(c)
	ctx := c.Request().Context()
	if queryBool(c, "detailed") {
		rows, total, err := svc.ListDetailed(ctx, f)
		if err != nil {
			return failErr(c, err)
		}
		return paged(c, rows, total, page, pageSize)
	}
	rows, total, err := svc.List(ctx, f)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	svc := orderService(c)
	if queryBool(c, "detailed") {
		detail, err := svc.GetDetailed(c.Request().Context(), id)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, detail)
	}
	order, err := svc.Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, order)
}

func listOrderItems(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	items, err := orderService(c).Items(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, items)
}

// createOrder stores the order and its items in one transaction
// @Summary create a work order
// @Tags Orders
// @Param order body orderPayload true "Order with items"
// @Success 201 {object} CreatedResponse
// @Router /api/v1/orders [post]
func createOrder(c echo.Context) error {
	var payload orderPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}
	if err := requireFields(raw, "client_id"); err != nil {
		return failErr(c, err)
	}

	in := orders.Input{
		ClientID:       payload.ClientID,
		ProfessionalID: payload.ProfessionalID,
		DeliveryDate:   payload.DeliveryDate,
		Urgent:         payload.Urgent != nil && *payload.Urgent,
		Notes:          strValue(payload.Notes),
		Items:          itemInputs(payload.Items),
	}
	if payload.Status != nil {
		in.Status = *payload.Status
	}

	order, err := orderService(c).Create(c.Request().Context(), in)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("work order created", zap.Int64("id", order.ID), zap.Int64("client_id", order.ClientID),
		zap.Int("items", len(in.Items)))
	publish(c, notify.TopicOrderCreated, notify.OrderEvent{
		OrderID:      order.ID,
		ClientID:     order.ClientID,
		Status:       order.Status,
		Urgent:       order.Urgent,
		DeliveryDate: order.DeliveryDate,
	})
	return created(c, order.ID)
}

// updateOrder applies a partial update. A present items key replaces the
// item set: entries with id are updated, entries without id are added and
// missing ones are removed.
func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var payload orderPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}

	p := orders.Patch{
		DeliveryDate: payload.DeliveryDate,
		Urgent:       payload.Urgent,
		Status:       payload.Status,
		Notes:        payload.Notes,
	}
	if has(raw, "client_id") {
		if payload.ClientID == nil {
			return failErr(c, domain.ValidationError("client_id cannot be null"))
		}
		p.ClientID = payload.ClientID
	}
	if has(raw, "professional_id") {
		p.ProfessionalID = payload.ProfessionalID
		p.ProfessionalSet = true
	}
	// null leaves the item set alone, only an array replaces it
	if v, ok := raw["items"]; ok && v != nil {
		p.Items = itemInputs(payload.Items)
		p.ItemsSet = true
	}

	change, err := orderService(c).Update(c.Request().Context(), id, p)
	if err != nil {
		return failErr(c, err)
	}
	if change.StatusChanged() {
		zap.L().Info("work order status changed", zap.Int64("id", id),
			zap.String("from", string(change.Before.Status)), zap.String("to", string(change.After.Status)))
		publish(c, notify.TopicOrderStatus, notify.OrderEvent{
			OrderID:      id,
			ClientID:     change.After.ClientID,
			Status:       change.After.Status,
			Previous:     change.Before.Status,
			Urgent:       change.After.Urgent,
			DeliveryDate: change.After.DeliveryDate,
		})
	}
	return ok(c, change.After)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	if err := orderService(c).Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	zap.L().Info("work order deleted", zap.Int64("id", id))
	return ok(c, map[string]interface{}{"id": id})
}

// estimateOrder previews the delivery date of an order created today
func estimateOrder(c echo.Context) error {
	var payload estimatePayload
	if _, err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	date := orderService(c).Estimate(payload.Urgent)
	return ok(c, estimateResponse{Urgent: payload.Urgent, DeliveryDate: common.FormatDate(date)})
}
