package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	Receivable AccountKind = "receivable"
	Payable    AccountKind = "payable"
)

func (k AccountKind) Valid() bool {
	switch k {
	case Receivable, Payable:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountPaid      AccountStatus = "paid"
	AccountOverdue   AccountStatus = "overdue"
	AccountCancelled AccountStatus = "cancelled"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountPending, AccountPaid, AccountOverdue, AccountCancelled:
		return true
	}
	return false
}

// AccountEntry is one receivable or payable. Receivables reference a
// client (and optionally the work order being billed), payables name a
// supplier. Status is paid exactly when PaymentDate is set.
type AccountEntry struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind        AccountKind     `gorm:"size:20;index;not null" json:"kind"`
	ClientID    *int64          `gorm:"index" json:"client_id,omitempty"`
	WorkOrderID *int64          `gorm:"index" json:"work_order_id,omitempty"`
	Supplier    string          `gorm:"size:200;index" json:"supplier,omitempty"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	IssueDate   time.Time       `gorm:"type:date" json:"issue_date"`
	DueDate     time.Time       `gorm:"type:date;index;not null" json:"due_date"`
	PaymentDate *time.Time      `gorm:"type:date" json:"payment_date"`
	Status      AccountStatus   `gorm:"size:20;index;not null" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (AccountEntry) TableName() string {
	return "account_entry"
}

// AccountEntryDetail entry joined with the client name
type AccountEntryDetail struct {
	AccountEntry
	ClientName *string `json:"client_name,omitempty"`
}

// AccountExportRow flat row used by the CSV and XLSX exports
type AccountExportRow struct {
	ID          int64  `csv:"id"`
	Kind        string `csv:"kind"`
	Party       string `csv:"party"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	IssueDate   string `csv:"issue_date"`
	DueDate     string `csv:"due_date"`
	PaymentDate string `csv:"payment_date"`
	Status      string `csv:"status"`
}
