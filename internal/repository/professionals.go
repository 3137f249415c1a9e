package repository

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

type ProfessionalFilter struct {
	Name     string
	ClientID *int64
	Page     int
	PageSize int
}

type GormProfessionalRepository struct {
	*Base[domain.Professional]
	clients *Base[domain.Client]
}

func NewGormProfessionalRepository(db *gorm.DB) *GormProfessionalRepository {
	return &GormProfessionalRepository{
		Base:    NewBase[domain.Professional](db, "professional"),
		clients: NewBase[domain.Client](db, "client"),
	}
}

func (r *GormProfessionalRepository) Create(ctx context.Context, p *domain.Professional) (int64, error) {
	if err := r.checkClient(ctx, p.ClientID); err != nil {
		return 0, err
	}
	if err := r.Insert(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *GormProfessionalRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if clientID, ok := fields["client_id"].(*int64); ok {
		if err := r.checkClient(ctx, clientID); err != nil {
			return err
		}
	}
	return r.Base.Update(ctx, id, fields)
}

func (r *GormProfessionalRepository) Search(ctx context.Context, f ProfessionalFilter) ([]domain.Professional, int64, error) {
	c := Criteria{
		Contains: map[string]string{"name": f.Name},
		Order:    "name, id",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.ClientID != nil {
		c.Eq = map[string]interface{}{"client_id": *f.ClientID}
	}
	return r.ListFiltered(ctx, c)
}

// ListByClient professionals attached to a clinic
func (r *GormProfessionalRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Professional, error) {
	ok, err := r.clients.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("client", clientID)
	}
	items, _, err := r.Search(ctx, ProfessionalFilter{ClientID: &clientID})
	return items, err
}

func (r *GormProfessionalRepository) Delete(ctx context.Context, id int64) error {
	var count int64
	if err := r.DB(ctx).Model(&domain.WorkOrder{}).Where("professional_id = ?", id).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count > 0 {
		return domain.ConflictError("professional %d still has work orders", id)
	}
	return r.Base.Delete(ctx, id)
}

func (r *GormProfessionalRepository) checkClient(ctx context.Context, clientID *int64) error {
	if clientID == nil {
		return nil
	}
	ok, err := r.clients.Exists(ctx, *clientID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationError("client %d does not exist", *clientID)
	}
	return nil
}
