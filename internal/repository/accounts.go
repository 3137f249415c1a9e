package repository

import (
	"context"
	"strings"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

// AccountFilter listing filter for receivables and payables
type AccountFilter struct {
	Kind     domain.AccountKind
	Status   domain.AccountStatus
	ClientID *int64
	Supplier string
	DueFrom  *time.Time
	DueTo    *time.Time
	Page     int
	PageSize int
}

// AccountRepository storage of ledger entries. Every lookup is scoped by
// kind so a payable id is never found through the receivable routes.
type AccountRepository interface {
	Create(ctx context.Context, entry *domain.AccountEntry) (int64, error)
	GetByID(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntry, error)
	GetDetail(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntryDetail, error)
	List(ctx context.Context, f AccountFilter) ([]domain.AccountEntryDetail, int64, error)
	Update(ctx context.Context, kind domain.AccountKind, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, kind domain.AccountKind, id int64) error

	// MarkOverdue flags unpaid pending entries due before today
	MarkOverdue(ctx context.Context, kind domain.AccountKind, today time.Time) (int64, error)

	ClientExists(ctx context.Context, id int64) (bool, error)
	WorkOrderExists(ctx context.Context, id int64) (bool, error)
}

// GormAccountRepository is the GORM implementation of AccountRepository
type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func entityName(kind domain.AccountKind) string {
	switch kind {
	case domain.Receivable:
		return "receivable"
	case domain.Payable:
		return "payable"
	}
	return "account"
}

func (r *GormAccountRepository) Create(ctx context.Context, entry *domain.AccountEntry) (int64, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, translate(err)
	}
	return entry.ID, nil
}

func (r *GormAccountRepository) GetByID(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntry, error) {
	var entry domain.AccountEntry
	err := r.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).Take(&entry).Error
	if err != nil {
		return nil, translateNotFound(err, entityName(kind), id)
	}
	return &entry, nil
}

func (r *GormAccountRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("account_entry").
		Select("account_entry.*, client.name AS client_name").
		Joins("LEFT JOIN client ON client.id = account_entry.client_id")
}

func (r *GormAccountRepository) GetDetail(ctx context.Context, kind domain.AccountKind, id int64) (*domain.AccountEntryDetail, error) {
	var detail domain.AccountEntryDetail
	err := r.detailQuery(ctx).
		Where("account_entry.id = ? AND account_entry.kind = ?", id, kind).
		Take(&detail).Error
	if err != nil {
		return nil, translateNotFound(err, entityName(kind), id)
	}
	return &detail, nil
}

func applyAccountFilter(query *gorm.DB, f AccountFilter) *gorm.DB {
	query = query.Where("account_entry.kind = ?", f.Kind)
	if f.Status != "" {
		query = query.Where("account_entry.status = ?", f.Status)
	}
	if f.ClientID != nil {
		query = query.Where("account_entry.client_id = ?", *f.ClientID)
	}
	if s := strings.TrimSpace(f.Supplier); s != "" {
		query = whereContains(query, "account_entry.supplier", s)
	}
	if f.DueFrom != nil {
		query = query.Where("account_entry.due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		query = query.Where("account_entry.due_date <= ?", *f.DueTo)
	}
	return query
}

// List entries ordered by due date
func (r *GormAccountRepository) List(ctx context.Context, f AccountFilter) ([]domain.AccountEntryDetail, int64, error) {
	var total int64
	err := applyAccountFilter(r.db.WithContext(ctx).Model(&domain.AccountEntry{}), f).Count(&total).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	var items []domain.AccountEntryDetail
	query := applyAccountFilter(r.detailQuery(ctx), f).Order("account_entry.due_date, account_entry.id")
	if err := paginate(query, f.Page, f.PageSize).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func (r *GormAccountRepository) Update(ctx context.Context, kind domain.AccountKind, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return noOpUpdate()
	}
	result := r.db.WithContext(ctx).Model(&domain.AccountEntry{}).
		Where("id = ? AND kind = ?", id, kind).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(entityName(kind), id)
	}
	return nil
}

func (r *GormAccountRepository) Delete(ctx context.Context, kind domain.AccountKind, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).Delete(&domain.AccountEntry{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(entityName(kind), id)
	}
	return nil
}

func (r *GormAccountRepository) MarkOverdue(ctx context.Context, kind domain.AccountKind, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.AccountEntry{}).
		Where("kind = ? AND status = ? AND payment_date IS NULL AND due_date < ?", kind, domain.AccountPending, today).
		Update("status", domain.AccountOverdue)
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormAccountRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return NewBase[domain.Client](r.db, "client").Exists(ctx, id)
}

func (r *GormAccountRepository) WorkOrderExists(ctx context.Context, id int64) (bool, error) {
	return NewBase[domain.WorkOrder](r.db, "work order").Exists(ctx, id)
}
