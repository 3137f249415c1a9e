package repository

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

// ClientFilter listing filter for clients
type ClientFilter struct {
	Name     string
	Type     domain.ClientType
	Page     int
	PageSize int
}

// GormClientRepository client records
type GormClientRepository struct {
	*Base[domain.Client]
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{Base: NewBase[domain.Client](db, "client")}
}

func (r *GormClientRepository) Create(ctx context.Context, client *domain.Client) (int64, error) {
	if err := r.Insert(ctx, client); err != nil {
		return 0, err
	}
	return client.ID, nil
}

func (r *GormClientRepository) Search(ctx context.Context, f ClientFilter) ([]domain.Client, int64, error) {
	c := Criteria{
		Contains: map[string]string{"name": f.Name},
		Order:    "name, id",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.Type != "" {
		c.Eq = map[string]interface{}{"type": f.Type}
	}
	return r.ListFiltered(ctx, c)
}

// Delete removes a client that no order or account references.
func (r *GormClientRepository) Delete(ctx context.Context, id int64) error {
	for _, ref := range []struct {
		model interface{}
		what  string
	}{
		{&domain.WorkOrder{}, "work orders"},
		{&domain.AccountEntry{}, "accounts"},
	} {
		var count int64
		if err := r.DB(ctx).Model(ref.model).Where("client_id = ?", id).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count > 0 {
			return domain.ConflictError("client %d still has %s", id, ref.what)
		}
	}
	return r.Base.Delete(ctx, id)
}
