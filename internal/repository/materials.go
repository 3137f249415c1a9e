package repository

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MaterialFilter struct {
	Name     string
	LowStock bool
	Page     int
	PageSize int
}

// GormMaterialRepository stock of materials
type GormMaterialRepository struct {
	*Base[domain.Material]
}

func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{Base: NewBase[domain.Material](db, "material")}
}

func (r *GormMaterialRepository) Create(ctx context.Context, m *domain.Material) (int64, error) {
	if m.Quantity.IsNegative() {
		return 0, domain.ValidationError("quantity must be >= 0")
	}
	if err := r.Insert(ctx, m); err != nil {
		return 0, err
	}
	return m.ID, nil
}

func lowStockScope(db *gorm.DB) *gorm.DB {
	return db.Where("min_stock IS NOT NULL AND quantity <= min_stock")
}

func (r *GormMaterialRepository) Search(ctx context.Context, f MaterialFilter) ([]domain.Material, int64, error) {
	c := Criteria{
		Contains: map[string]string{"name": f.Name},
		Order:    "name, id",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.LowStock {
		c.Scopes = append(c.Scopes, lowStockScope)
	}
	return r.ListFiltered(ctx, c)
}

// LowStock all materials at or under their minimum
func (r *GormMaterialRepository) LowStock(ctx context.Context) ([]domain.Material, error) {
	items, _, err := r.Search(ctx, MaterialFilter{LowStock: true})
	return items, err
}

// AdjustStock adds delta (negative to consume) in a single statement and
// refuses to let the quantity drop below zero.
func (r *GormMaterialRepository) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal) (*domain.Material, error) {
	result := r.DB(ctx).Model(&domain.Material{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		ok, err := r.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound("material", id)
		}
		return nil, domain.ValidationError("insufficient stock for material %d", id)
	}
	return r.GetByID(ctx, id)
}
