package adminapi

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/protechlab/labdesk/internal/webserver"
)

// TableInfo row count of one table
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// DatabaseInfo summary of the backing store
type DatabaseInfo struct {
	DatabaseType    string      `json:"database_type"`
	DatabaseVersion string      `json:"database_version"`
	DatabaseSize    string      `json:"database_size"`
	ServerTime      string      `json:"server_time"`
	Tables          []TableInfo `json:"tables"`
}

type tabler interface {
	TableName() string
}

func registerMaintenanceRoutes() {
	webserver.ApiPOST("/maintenance/sweep-overdue", sweepOverdue)
	webserver.ApiGET("/maintenance/update-status", sweepOverdue)
	webserver.ApiGET("/maintenance/database", databaseInfo, webserver.RequireRole(domain.RoleAdmin))
}

// sweepOverdue flags past due receivables and payables. Nothing schedules
// this, it only runs on request.
// @Summary run the overdue sweep
// @Tags Maintenance
// @Success 200 {object} ledger.SweepResult
// @Router /api/v1/maintenance/sweep-overdue [post]
func sweepOverdue(c echo.Context) error {
	result, err := ledgerService(c).SweepAll(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	zap.L().Info("overdue sweep", zap.Int64("receivable", result.Receivable), zap.Int64("payable", result.Payable))
	if result.Receivable+result.Payable > 0 {
		publish(c, notify.TopicOverdue, notify.OverdueEvent{Receivable: result.Receivable, Payable: result.Payable})
	}
	return ok(c, result)
}

// databaseInfo reports engine version, size and row counts of the application tables
func databaseInfo(c echo.Context) error {
	db := GetDB(c).WithContext(c.Request().Context())
	dbType := db.Dialector.Name()
	info := DatabaseInfo{
		DatabaseType: dbType,
		ServerTime:   time.Now().Format("2006-01-02 15:04:05"),
	}

	var err error
	switch dbType {
	case "postgres":
		err = db.Raw("SELECT version()").Scan(&info.DatabaseVersion).Error
		if err == nil {
			err = db.Raw("SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&info.DatabaseSize).Error
		}
	case "sqlite":
		var version string
		var pageCount, pageSize int64
		err = db.Raw("SELECT sqlite_version()").Scan(&version).Error
		if err == nil {
			err = db.Raw("PRAGMA page_count").Scan(&pageCount).Error
		}
		if err == nil {
			err = db.Raw("PRAGMA page_size").Scan(&pageSize).Error
		}
		info.DatabaseVersion = "SQLite " + version
		info.DatabaseSize = humanSize(pageCount * pageSize)
	}
	if err != nil {
		return failErr(c, domain.StoreUnavailableError(err))
	}

	for _, model := range domain.Tables {
		t, ok := model.(tabler)
		if !ok {
			continue
		}
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return failErr(c, domain.StoreUnavailableError(err))
		}
		info.Tables = append(info.Tables, TableInfo{Name: t.TableName(), RowCount: count})
	}
	return ok(c, info)
}

func humanSize(b int64) string {
	switch {
	case b < 1024:
		return fmt.Sprintf("%d B", b)
	case b < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(b)/1024)
	case b < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(b)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(b)/(1024*1024*1024))
	}
}
