// Package ledger holds the accounts receivable and payable rules.
package ledger

import (
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
)

// DeriveStatus computes the stored status of an entry. A payment date
// always means paid. An empty or pending request becomes overdue when the
// due date is strictly before today. Any other requested status is kept.
func DeriveStatus(requested domain.AccountStatus, dueDate time.Time, paymentDate *time.Time, now time.Time) domain.AccountStatus {
	if paymentDate != nil {
		return domain.AccountPaid
	}
	switch requested {
	case "", domain.AccountPending:
		if IsPastDue(dueDate, now) {
			return domain.AccountOverdue
		}
		return domain.AccountPending
	case domain.AccountPaid, domain.AccountOverdue, domain.AccountCancelled:
		return requested
	}
	return requested
}

// IsPastDue compares calendar days only
func IsPastDue(dueDate, now time.Time) bool {
	return common.DateOnly(dueDate).Before(common.DateOnly(now))
}

// IsOverdue reports whether an unpaid entry is past its due date
func IsOverdue(entry domain.AccountEntry, now time.Time) bool {
	switch entry.Status {
	case domain.AccountPaid, domain.AccountCancelled:
		return false
	case domain.AccountPending, domain.AccountOverdue:
	}
	return entry.PaymentDate == nil && IsPastDue(entry.DueDate, now)
}

// Patch is a partial update. Nil pointers are absent fields. The *Set
// flags distinguish an explicit null from an absent key for the nullable
// columns.
type Patch struct {
	ClientID       *int64
	WorkOrderID    *int64
	WorkOrderSet   bool
	Supplier       *string
	Description    *string
	Amount         *decimal.Decimal
	IssueDate      *time.Time
	DueDate        *time.Time
	PaymentDate    *time.Time
	PaymentDateSet bool
	Status         *domain.AccountStatus
}

// Empty reports a patch without any field
func (p Patch) Empty() bool {
	return p.ClientID == nil && !p.WorkOrderSet && p.Supplier == nil &&
		p.Description == nil && p.Amount == nil && p.IssueDate == nil &&
		p.DueDate == nil && !p.PaymentDateSet && p.Status == nil
}

// ApplyPatch turns a patch into the column changes for entry, keeping
// status and payment date consistent. A non-null payment date forces paid.
// A null payment date re-derives the status unless one is supplied.
// A supplied non-paid status clears the payment date.
func ApplyPatch(entry domain.AccountEntry, p Patch, now time.Time) (map[string]interface{}, error) {
	if p.Empty() {
		return nil, domain.NoOpUpdateError()
	}
	if err := validatePatch(entry.Kind, p); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if p.ClientID != nil {
		fields["client_id"] = *p.ClientID
	}
	if p.WorkOrderSet {
		if p.WorkOrderID == nil {
			fields["work_order_id"] = nil
		} else {
			fields["work_order_id"] = *p.WorkOrderID
		}
	}
	if p.Supplier != nil {
		fields["supplier"] = *p.Supplier
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.IssueDate != nil {
		fields["issue_date"] = common.DateOnly(*p.IssueDate)
	}
	dueDate := entry.DueDate
	if p.DueDate != nil {
		dueDate = common.DateOnly(*p.DueDate)
		fields["due_date"] = dueDate
	}

	today := common.DateOnly(now)
	switch {
	case p.PaymentDateSet && p.PaymentDate != nil:
		fields["payment_date"] = common.DateOnly(*p.PaymentDate)
		fields["status"] = domain.AccountPaid

	case p.PaymentDateSet:
		if p.Status != nil && *p.Status == domain.AccountPaid {
			fields["payment_date"] = today
			fields["status"] = domain.AccountPaid
			break
		}
		fields["payment_date"] = nil
		requested := domain.AccountStatus("")
		if p.Status != nil {
			requested = *p.Status
		}
		fields["status"] = DeriveStatus(requested, dueDate, nil, now)

	case p.Status != nil:
		switch *p.Status {
		case domain.AccountPaid:
			if entry.PaymentDate == nil {
				fields["payment_date"] = today
			}
			fields["status"] = domain.AccountPaid
		case domain.AccountPending, domain.AccountOverdue, domain.AccountCancelled:
			if entry.PaymentDate != nil {
				fields["payment_date"] = nil
			}
			fields["status"] = *p.Status
		}

	case p.DueDate != nil && entry.PaymentDate == nil:
		switch entry.Status {
		case domain.AccountPending, domain.AccountOverdue:
			fields["status"] = DeriveStatus("", dueDate, nil, now)
		case domain.AccountPaid, domain.AccountCancelled:
		}
	}
	return fields, nil
}

func validatePatch(kind domain.AccountKind, p Patch) error {
	if p.Amount != nil && p.Amount.IsNegative() {
		return domain.ValidationError("amount must be >= 0")
	}
	if p.Description != nil && *p.Description == "" {
		return domain.ValidationError("description cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return domain.ValidationError("invalid status %q", *p.Status)
	}
	switch kind {
	case domain.Receivable:
		if p.Supplier != nil {
			return domain.ValidationError("supplier applies to payables only")
		}
	case domain.Payable:
		if p.ClientID != nil || p.WorkOrderSet {
			return domain.ValidationError("client and work order apply to receivables only")
		}
		if p.Supplier != nil && *p.Supplier == "" {
			return domain.ValidationError("supplier cannot be empty")
		}
	}
	return nil
}
