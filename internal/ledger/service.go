package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
)

// Input fields of a new entry
type Input struct {
	ClientID    *int64
	WorkOrderID *int64
	Supplier    string
	Description string
	Amount      *decimal.Decimal
	IssueDate   *time.Time
	DueDate     *time.Time
	PaymentDate *time.Time
	Status      domain.AccountStatus
}

// SweepResult counts of entries flagged overdue by a sweep
type SweepResult struct {
	Receivable int64     `json:"receivable"`
	Payable    int64     `json:"payable"`
	RanAt      time.Time `json:"ran_at"`
}

// Service accounts receivable and payable operations
type Service struct {
	repo repository.AccountRepository
	now  func() time.Time
}

func NewService(repo repository.AccountRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, kind domain.AccountKind, in Input) (*domain.AccountEntry, error) {
	if err := s.validateInput(ctx, kind, in); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &domain.AccountEntry{
		Kind:        kind,
		Description: strings.TrimSpace(in.Description),
		Amount:      *in.Amount,
		IssueDate:   common.DateOnly(now),
		DueDate:     common.DateOnly(*in.DueDate),
	}
	switch kind {
	case domain.Receivable:
		entry.ClientID = in.ClientID
		entry.WorkOrderID = in.WorkOrderID
	case domain.Payable:
		entry.Supplier = strings.TrimSpace(in.Supplier)
	}
	if in.IssueDate != nil {
		entry.IssueDate = common.DateOnly(*in.IssueDate)
	}
	if in.PaymentDate != nil {
		paid := common.DateOnly(*in.PaymentDate)
		entry.PaymentDate = &paid
	} else if in.Status == domain.AccountPaid {
		today := common.DateOnly(now)
		entry.PaymentDate = &today
	}
	entry.Status = DeriveStatus(in.Status, entry.DueDate, entry.PaymentDate, now)

	if _, err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) validateInput(ctx context.Context, kind domain.AccountKind, in Input) error {
	if !kind.Valid() {
		return domain.ValidationError("invalid account kind %q", kind)
	}
	var missing []string
	switch kind {
	case domain.Receivable:
		if in.ClientID == nil {
			missing = append(missing, "client_id")
		}
	case domain.Payable:
		if strings.TrimSpace(in.Supplier) == "" {
			missing = append(missing, "supplier")
		}
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if in.DueDate == nil {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return domain.ValidationError("required fields missing: %s", strings.Join(missing, ", "))
	}
	if in.Amount.IsNegative() {
		return domain.ValidationError("amount must be >= 0")
	}
	if in.Status != "" && !in.Status.Valid() {
		return domain.ValidationError("invalid status %q", in.Status)
	}
	if kind == domain.Payable && (in.ClientID != nil || in.WorkOrderID != nil) {
		return domain.ValidationError("client and work order apply to receivables only")
	}
	return s.checkReferences(ctx, in.ClientID, in.WorkOrderID)
}

func (s *Service) checkReferences(ctx context.Context, clientID, workOrderID *int64) error {
	if clientID != nil {
		ok, err := s.repo.ClientExists(ctx, *clientID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ValidationError("client %d does not exist", *clientID)
		}
	}
	if workOrderID != nil {
		ok, err := s.repo.WorkOrderExists(ctx, *workOrderID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ValidationError("work order %d does not exist", *workOrderID)
		}
	}
	return nil
}

// Update applies a partial change and returns the stored entry.
func (s *Service) Update(ctx context.Context, kind domain.AccountKind, id int64, p Patch) (*domain.AccountEntry, error) {
	if p.Empty() {
		return nil, domain.NoOpUpdateError()
	}
	entry, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	fields, err := ApplyPatch(*entry, p, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p.ClientID, p.WorkOrderID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, kind, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, kind, id)
}

// RegisterPayment marks the entry paid on date, today when date is nil.
// Paying an entry that is already paid without a new date keeps the
// recorded payment date.
func (s *Service) RegisterPayment(ctx context.Context, kind domain.AccountKind, id int64, date *time.Time) (*domain.AccountEntry, error) {
	entry, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	paidOn := common.DateOnly(s.now())
	switch {
	case date != nil:
		paidOn = common.DateOnly(*date)
	case entry.PaymentDate != nil:
		paidOn = *entry.PaymentDate
	}
	fields := map[string]interface{}{
		"payment_date": paidOn,
		"status":       domain.AccountPaid,
	}
	if err := s.repo.Update(ctx, kind, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, kind, id)
}

// SweepOverdue flags unpaid pending entries due before today. It returns
// the number of entries changed, so a second run on the same day reports 0.
func (s *Service) SweepOverdue(ctx context.Context, kind domain.AccountKind) (int64, error) {
	if !kind.Valid() {
		return 0, domain.ValidationError("invalid account kind %q", kind)
	}
	return s.repo.MarkOverdue(ctx, kind, common.DateOnly(s.now()))
}

func (s *Service) SweepAll(ctx context.Context) (*SweepResult, error) {
	receivable, err := s.SweepOverdue(ctx, domain.Receivable)
	if err != nil {
		return nil, err
	}
	payable, err := s.SweepOverdue(ctx, domain.Payable)
	if err != nil {
		return nil, err
	}
	return &SweepResult{Receivable: receivable, Payable: payable, RanAt: s.now()}, nil
}

func (s *Service) Get(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntry, error) {
	return s.repo.GetByID(ctx, kind, id)
}

func (s *Service) GetDetailed(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntryDetail, error) {
	return s.repo.GetDetail(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, f repository.AccountFilter) ([]domain.AccountEntryDetail, int64, error) {
	if !f.Kind.Valid() {
		return nil, 0, domain.ValidationError("invalid account kind %q", f.Kind)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.ValidationError("invalid status %q", f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, kind domain.AccountKind, id int64) error {
	return s.repo.Delete(ctx, kind, id)
}
