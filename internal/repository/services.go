package repository

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

type ServiceFilter struct {
	Name            string
	IncludeInactive bool
	Page            int
	PageSize        int
}

// GormServiceRepository catalogue of lab services
type GormServiceRepository struct {
	*Base[domain.LabService]
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{Base: NewBase[domain.LabService](db, "service")}
}

func (r *GormServiceRepository) Create(ctx context.Context, s *domain.LabService) (int64, error) {
	if s.Price.IsNegative() {
		return 0, domain.ValidationError("price must be >= 0")
	}
	// gorm skips zero values that carry a default tag
	active := s.Active
	if err := r.Insert(ctx, s); err != nil {
		return 0, err
	}
	if !active {
		if err := r.Base.Update(ctx, s.ID, map[string]interface{}{"active": false}); err != nil {
			return 0, err
		}
		s.Active = false
	}
	return s.ID, nil
}

// Search lists active services unless IncludeInactive is set
func (r *GormServiceRepository) Search(ctx context.Context, f ServiceFilter) ([]domain.LabService, int64, error) {
	c := Criteria{
		Contains: map[string]string{"name": f.Name},
		Order:    "name, id",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if !f.IncludeInactive {
		c.Eq = map[string]interface{}{"active": true}
	}
	return r.ListFiltered(ctx, c)
}

// Deactivate retires a service from the catalogue
func (r *GormServiceRepository) Deactivate(ctx context.Context, id int64) error {
	return r.Base.Update(ctx, id, map[string]interface{}{"active": false})
}

// HardDelete removes the row. Services used by order items cannot be removed.
func (r *GormServiceRepository) HardDelete(ctx context.Context, id int64) error {
	var count int64
	if err := r.DB(ctx).Model(&domain.OrderItem{}).Where("service_id = ?", id).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count > 0 {
		return domain.ConflictError("service %d is used by %d order items", id, count)
	}
	return r.Base.Delete(ctx, id)
}

// ByName finds a service by exact name, used by seeding
func (r *GormServiceRepository) ByName(ctx context.Context, name string) (*domain.LabService, error) {
	var s domain.LabService
	if err := r.DB(ctx).Where("name = ?", name).Take(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
