package adminapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/ledger"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/internal/webserver"
)

type accountPayload struct {
	ClientID    *int64                `json:"client_id"`
	WorkOrderID *int64                `json:"work_order_id"`
	Supplier    *string               `json:"supplier" validate:"omitempty,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=500"`
	Amount      *decimal.Decimal      `json:"amount"`
	IssueDate   *time.Time            `json:"issue_date"`
	DueDate     *time.Time            `json:"due_date"`
	PaymentDate *time.Time            `json:"payment_date"`
	Status      *domain.AccountStatus `json:"status"`
}

// accountHandlers serves one ledger side
type accountHandlers struct {
	kind domain.AccountKind
}

func registerAccountRoutes() {
	for _, kind := range []domain.AccountKind{domain.Receivable, domain.Payable} {
		h := accountHandlers{kind: kind}
		base := "/accounts/" + string(kind)
		webserver.ApiGET(base, h.list)
		webserver.ApiGET(base+"/export", h.export)
		webserver.ApiGET(base+"/:id", h.get)
		webserver.ApiPOST(base, h.create)
		webserver.ApiPUT(base+"/:id", h.update)
		webserver.ApiDELETE(base+"/:id", h.remove)
	}
}

func ledgerService(c echo.Context) *ledger.Service {
	return ledger.NewService(repository.NewGormAccountRepository(GetDB(c)))
}

func (h accountHandlers) filter(c echo.Context) (repository.AccountFilter, error) {
	page, pageSize := parsePagination(c)
	f := repository.AccountFilter{
		Kind:     h.kind,
		Status:   domain.AccountStatus(strings.TrimSpace(c.QueryParam("status"))),
		Supplier: strings.TrimSpace(c.QueryParam("supplier")),
		Page:     page,
		PageSize: pageSize,
	}
	var err error
	if f.ClientID, err = queryInt64(c, "client_id"); err != nil {
		return f, err
	}
	if f.DueFrom, err = queryDate(c, "due_from"); err != nil {
		return f, err
	}
	if f.DueTo, err = queryDate(c, "due_to"); err != nil {
		return f, err
	}
	return f, nil
}

// list returns the entries of one side ordered by due date. refresh_overdue
// runs the overdue sweep first.
// @Summary list account entries
// @Tags Accounts
// @Param status query string false "pending, paid, overdue or cancelled"
// @Param client_id query int false "Client ID (receivables)"
// @Param supplier query string false "Supplier substring (payables)"
// @Param due_from query string false "Due date lower bound"
// @Param due_to query string false "Due date upper bound"
// @Param refresh_overdue query bool false "Run the overdue sweep before listing"
// @Success 200 {object} ListResponse
// @Router /api/v1/accounts/receivable [get]
func (h accountHandlers) list(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return failErr(c, err)
	}
	svc := ledgerService(c)
	ctx := c.Request().Context()
	if queryBool(c, "refresh_overdue", "atualizar_vencidas") {
		n, err := svc.SweepOverdue(ctx, h.kind)
		if err != nil {
			return failErr(c, err)
		}
		if n > 0 {
			h.publishOverdue(c, n)
		}
	}
	rows, total, err := svc.List(ctx, f)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, f.Page, f.PageSize)
}

func (h accountHandlers) publishOverdue(c echo.Context, n int64) {
	ev := notify.OverdueEvent{}
	if h.kind == domain.Receivable {
		ev.Receivable = n
	} else {
		ev.Payable = n
	}
	publish(c, notify.TopicOverdue, ev)
}

func (h accountHandlers) get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, string(h.kind))
	}
	entry, err := ledgerService(c).GetDetailed(c.Request().Context(), h.kind, id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, entry)
}

// create
// @Summary create an account entry
// @Tags Accounts
// @Param entry body accountPayload true "Entry"
// @Success 201 {object} CreatedResponse
// @Router /api/v1/accounts/receivable [post]
func (h accountHandlers) create(c echo.Context) error {
	var payload accountPayload
	if _, err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	in := ledger.Input{
		ClientID:    payload.ClientID,
		WorkOrderID: payload.WorkOrderID,
		Supplier:    strValue(payload.Supplier),
		Description: strValue(payload.Description),
		Amount:      payload.Amount,
		IssueDate:   payload.IssueDate,
		DueDate:     payload.DueDate,
		PaymentDate: payload.PaymentDate,
	}
	if payload.Status != nil {
		in.Status = *payload.Status
	}

	entry, err := ledgerService(c).Create(c.Request().Context(), h.kind, in)
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("account entry created", zap.String("kind", string(h.kind)), zap.Int64("id", entry.ID),
		zap.String("amount", entry.Amount.String()), zap.String("status", string(entry.Status)))
	if entry.Status == domain.AccountPaid {
		publish(c, notify.TopicPaid, notify.PaymentEvent{Entry: *entry})
	}
	return created(c, entry.ID)
}

// update applies a partial change, or registers a payment when the body
// carries register_payment (alias registrar_pagamento).
func (h accountHandlers) update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, string(h.kind))
	}
	var payload accountPayload
	raw, err := bindPayload(c, &payload)
	if err != nil {
		return failErr(c, err)
	}

	svc := ledgerService(c)
	ctx := c.Request().Context()
	before, err := svc.Get(ctx, h.kind, id)
	if err != nil {
		return failErr(c, err)
	}

	var entry *domain.AccountEntry
	if flag(raw, "register_payment", "registrar_pagamento") {
		entry, err = svc.RegisterPayment(ctx, h.kind, id, payload.PaymentDate)
	} else {
		entry, err = svc.Update(ctx, h.kind, id, h.patch(raw, payload))
	}
	if err != nil {
		return failErr(c, err)
	}
	if entry.Status == domain.AccountPaid && before.Status != domain.AccountPaid {
		zap.L().Info("payment registered", zap.String("kind", string(h.kind)), zap.Int64("id", id))
		publish(c, notify.TopicPaid, notify.PaymentEvent{Entry: *entry})
	}
	return ok(c, entry)
}

func (h accountHandlers) patch(raw map[string]interface{}, payload accountPayload) ledger.Patch {
	p := ledger.Patch{
		Amount:    payload.Amount,
		IssueDate: payload.IssueDate,
		DueDate:   payload.DueDate,
		Status:    payload.Status,
	}
	if has(raw, "client_id") {
		p.ClientID = payload.ClientID
	}
	if has(raw, "work_order_id") {
		p.WorkOrderID = payload.WorkOrderID
		p.WorkOrderSet = true
	}
	if has(raw, "supplier") {
		s := strValue(payload.Supplier)
		p.Supplier = &s
	}
	if has(raw, "description") {
		d := strValue(payload.Description)
		p.Description = &d
	}
	if has(raw, "payment_date") {
		p.PaymentDate = payload.PaymentDate
		p.PaymentDateSet = true
	}
	return p
}

func (h accountHandlers) remove(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, string(h.kind))
	}
	if err := ledgerService(c).Delete(c.Request().Context(), h.kind, id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
