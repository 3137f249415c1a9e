package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
)

const exportSheet = "Sheet1"

var exportHeader = []string{"id", "kind", "party", "description", "amount", "issue_date", "due_date", "payment_date", "status"}

func exportRows(entries []domain.AccountEntryDetail) []*domain.AccountExportRow {
	rows := make([]*domain.AccountExportRow, 0, len(entries))
	for _, e := range entries {
		party := e.Supplier
		if e.Kind == domain.Receivable && e.ClientName != nil {
			party = *e.ClientName
		}
		row := &domain.AccountExportRow{
			ID:          e.ID,
			Kind:        string(e.Kind),
			Party:       common.IfEmptyStr(party, common.NA),
			Description: e.Description,
			Amount:      e.Amount.StringFixed(2),
			IssueDate:   common.FormatDate(e.IssueDate),
			DueDate:     common.FormatDate(e.DueDate),
			Status:      string(e.Status),
		}
		if e.PaymentDate != nil {
			row.PaymentDate = common.FormatDate(*e.PaymentDate)
		}
		rows = append(rows, row)
	}
	return rows
}

// export streams every entry matching the list filters as csv (default) or xlsx
// @Summary export account entries
// @Tags Accounts
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Router /api/v1/accounts/receivable/export [get]
func (h accountHandlers) export(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return failErr(c, err)
	}
	f.Page, f.PageSize = 0, 0
	entries, _, err := ledgerService(c).List(c.Request().Context(), f)
	if err != nil {
		return failErr(c, err)
	}
	rows := exportRows(entries)
	stamp := time.Now().Format("20060102")

	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	switch format {
	case "", "csv":
		var buf bytes.Buffer
		if err := gocsv.Marshal(rows, &buf); err != nil {
			return failErr(c, errors.Wrap(err, "encode csv"))
		}
		setAttachment(c, fmt.Sprintf("%s-%s.csv", h.kind, stamp))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		data, err := writeXLSX(rows)
		if err != nil {
			return failErr(c, err)
		}
		setAttachment(c, fmt.Sprintf("%s-%s.xlsx", h.kind, stamp))
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		return failErr(c, domain.ValidationError("unsupported export format %q", format))
	}
}

func setAttachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}

func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

func writeXLSX(rows []*domain.AccountExportRow) ([]byte, error) {
	xlsx := excelize.NewFile()
	for i, name := range exportHeader {
		xlsx.SetCellValue(exportSheet, cellName(i, 1), name)
	}
	for r, row := range rows {
		values := []interface{}{row.ID, row.Kind, row.Party, row.Description, row.Amount,
			row.IssueDate, row.DueDate, row.PaymentDate, row.Status}
		for i, v := range values {
			xlsx.SetCellValue(exportSheet, cellName(i, r+2), v)
		}
	}
	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "encode xlsx")
	}
	return buf.Bytes(), nil
}
