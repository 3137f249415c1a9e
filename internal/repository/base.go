package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Criteria describes a filtered listing. Keys of Eq and Contains are
// column names chosen by the caller, never user input.
type Criteria struct {
	Eq       map[string]interface{}
	Contains map[string]string
	Scopes   []func(*gorm.DB) *gorm.DB
	Order    string
	Page     int
	PageSize int
}

// Base is the gorm implementation of the generic record operations.
// T must be a gorm model with an int64 primary key named id.
type Base[T any] struct {
	db     *gorm.DB
	entity string
}

func NewBase[T any](db *gorm.DB, entity string) *Base[T] {
	return &Base[T]{db: db, entity: entity}
}

// DB returns a session bound to ctx
func (r *Base[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *Base[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.DB(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// ListFiltered returns one page of matching records and the total match count.
func (r *Base[T]) ListFiltered(ctx context.Context, c Criteria) ([]T, int64, error) {
	query := applyCriteria(r.DB(ctx).Model(new(T)), c).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	order := c.Order
	if order == "" {
		order = "id"
	}
	var items []T
	if err := paginate(query.Order(order), c.Page, c.PageSize).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func (r *Base[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := r.DB(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, translateNotFound(err, r.entity, id)
	}
	return &item, nil
}

func (r *Base[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *Base[T]) Insert(ctx context.Context, item *T) error {
	return translate(r.DB(ctx).Create(item).Error)
}

// Update applies fields (column => value) to the record. An empty map is a
// no-op update, an absent record is not found.
func (r *Base[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return noOpUpdate()
	}
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(r.entity, id)
	}
	return translate(r.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error)
}

func (r *Base[T]) Delete(ctx context.Context, id int64) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(r.entity, id)
	}
	return nil
}

func applyCriteria(query *gorm.DB, c Criteria) *gorm.DB {
	for column, value := range c.Eq {
		query = query.Where(column+" = ?", value)
	}
	for column, value := range c.Contains {
		if strings.TrimSpace(value) == "" {
			continue
		}
		query = whereContains(query, column, value)
	}
	if len(c.Scopes) > 0 {
		query = query.Scopes(c.Scopes...)
	}
	return query
}

// whereContains is a case insensitive substring match
func whereContains(query *gorm.DB, column, value string) *gorm.DB {
	if query.Dialector.Name() == "postgres" {
		return query.Where(column+" ILIKE ?", "%"+value+"%")
	}
	return query.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
