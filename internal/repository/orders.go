package repository

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderFilter listing filter for work orders
type OrderFilter struct {
	Status         domain.OrderStatus
	ClientID       *int64
	ProfessionalID *int64
	Urgent         *bool
	Page           int
	PageSize       int
}

// OrderRepository storage of work orders and their items
type OrderRepository interface {
	// Transaction runs fn against a repository bound to one database transaction
	Transaction(ctx context.Context, fn func(repo OrderRepository) error) error

	CreateOrder(ctx context.Context, order *domain.WorkOrder) (int64, error)
	GetOrder(ctx context.Context, id int64) (*domain.WorkOrder, error)
	UpdateOrder(ctx context.Context, id int64, fields map[string]interface{}) error
	DeleteOrder(ctx context.Context, id int64) error
	ListOrders(ctx context.Context, f OrderFilter) ([]domain.WorkOrder, int64, error)
	GetDetail(ctx context.Context, id int64) (*domain.WorkOrderDetail, error)
	ListDetails(ctx context.Context, f OrderFilter) ([]domain.WorkOrderDetail, int64, error)

	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ItemDetails(ctx context.Context, orderIDs ...int64) ([]domain.OrderItemDetail, error)
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	UpdateItem(ctx context.Context, id int64, fields map[string]interface{}) error
	// DeleteItems removes the given items of the order, or all of them when ids is empty
	DeleteItems(ctx context.Context, orderID int64, ids ...int64) (int64, error)

	// ServicePrice is the catalogue price of a service
	ServicePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error)
	ClientExists(ctx context.Context, id int64) (bool, error)
	ProfessionalExists(ctx context.Context, id int64) (bool, error)
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(repo OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormOrderRepository{db: tx})
	})
}

func (r *GormOrderRepository) orders() *Base[domain.WorkOrder] {
	return NewBase[domain.WorkOrder](r.db, "work order")
}

func (r *GormOrderRepository) CreateOrder(ctx context.Context, order *domain.WorkOrder) (int64, error) {
	if err := r.orders().Insert(ctx, order); err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *GormOrderRepository) GetOrder(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	return r.orders().GetByID(ctx, id)
}

func (r *GormOrderRepository) UpdateOrder(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.orders().Update(ctx, id, fields)
}

func (r *GormOrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	return r.orders().Delete(ctx, id)
}

func applyOrderFilter(query *gorm.DB, f OrderFilter) *gorm.DB {
	if f.Status != "" {
		query = query.Where("work_order.status = ?", f.Status)
	}
	if f.ClientID != nil {
		query = query.Where("work_order.client_id = ?", *f.ClientID)
	}
	if f.ProfessionalID != nil {
		query = query.Where("work_order.professional_id = ?", *f.ProfessionalID)
	}
	if f.Urgent != nil {
		query = query.Where("work_order.urgent = ?", *f.Urgent)
	}
	return query
}

const orderListOrder = "work_order.created_at DESC, work_order.id DESC"

func (r *GormOrderRepository) countOrders(ctx context.Context, f OrderFilter) (int64, error) {
	var total int64
	err := applyOrderFilter(r.db.WithContext(ctx).Model(&domain.WorkOrder{}), f).Count(&total).Error
	return total, translate(err)
}

func (r *GormOrderRepository) ListOrders(ctx context.Context, f OrderFilter) ([]domain.WorkOrder, int64, error) {
	total, err := r.countOrders(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.WorkOrder
	query := applyOrderFilter(r.db.WithContext(ctx).Model(&domain.WorkOrder{}), f).Order(orderListOrder)
	if err := paginate(query, f.Page, f.PageSize).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

// detailQuery joins names and sums the item totals at read time
func (r *GormOrderRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("work_order").
		Select("work_order.*, COALESCE(client.name, '') AS client_name, professional.name AS professional_name, " +
			"(SELECT COALESCE(SUM(order_item.total), 0) FROM order_item WHERE order_item.work_order_id = work_order.id) AS total_value").
		Joins("LEFT JOIN client ON client.id = work_order.client_id").
		Joins("LEFT JOIN professional ON professional.id = work_order.professional_id")
}

func (r *GormOrderRepository) GetDetail(ctx context.Context, id int64) (*domain.WorkOrderDetail, error) {
	var detail domain.WorkOrderDetail
	if err := r.detailQuery(ctx).Where("work_order.id = ?", id).Take(&detail).Error; err != nil {
		return nil, translateNotFound(err, "work order", id)
	}
	items, err := r.ItemDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Items = items
	return &detail, nil
}

func (r *GormOrderRepository) ListDetails(ctx context.Context, f OrderFilter) ([]domain.WorkOrderDetail, int64, error) {
	total, err := r.countOrders(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	var details []domain.WorkOrderDetail
	query := applyOrderFilter(r.detailQuery(ctx), f).Order(orderListOrder)
	if err := paginate(query, f.Page, f.PageSize).Find(&details).Error; err != nil {
		return nil, 0, translate(err)
	}
	if len(details) == 0 {
		return details, total, nil
	}

	ids := make([]int64, len(details))
	for i := range details {
		ids[i] = details[i].ID
	}
	items, err := r.ItemDetails(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}
	byOrder := make(map[int64][]domain.OrderItemDetail, len(details))
	for _, item := range items {
		byOrder[item.WorkOrderID] = append(byOrder[item.WorkOrderID], item)
	}
	for i := range details {
		details[i].Items = byOrder[details[i].ID]
		if details[i].Items == nil {
			details[i].Items = []domain.OrderItemDetail{}
		}
	}
	return details, total, nil
}

func (r *GormOrderRepository) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	if err := r.db.WithContext(ctx).Where("work_order_id = ?", orderID).Order("id").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *GormOrderRepository) ItemDetails(ctx context.Context, orderIDs ...int64) ([]domain.OrderItemDetail, error) {
	items := []domain.OrderItemDetail{}
	if len(orderIDs) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Table("order_item").
		Select("order_item.*, COALESCE(lab_service.name, '') AS service_name").
		Joins("LEFT JOIN lab_service ON lab_service.id = order_item.service_id").
		Where("order_item.work_order_id IN ?", orderIDs).
		Order("order_item.work_order_id, order_item.id").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *GormOrderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	return NewBase[domain.OrderItem](r.db, "order item").Insert(ctx, item)
}

func (r *GormOrderRepository) UpdateItem(ctx context.Context, id int64, fields map[string]interface{}) error {
	return NewBase[domain.OrderItem](r.db, "order item").Update(ctx, id, fields)
}

func (r *GormOrderRepository) DeleteItems(ctx context.Context, orderID int64, ids ...int64) (int64, error) {
	query := r.db.WithContext(ctx).Where("work_order_id = ?", orderID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Delete(&domain.OrderItem{})
	return result.RowsAffected, translate(result.Error)
}

func (r *GormOrderRepository) ServicePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error) {
	service, err := NewBase[domain.LabService](r.db, "service").GetByID(ctx, serviceID)
	if err != nil {
		if domain.IsNotFound(err) {
			return decimal.Zero, domain.ValidationError("service %d does not exist", serviceID)
		}
		return decimal.Zero, err
	}
	return service.Price, nil
}

func (r *GormOrderRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return NewBase[domain.Client](r.db, "client").Exists(ctx, id)
}

func (r *GormOrderRepository) ProfessionalExists(ctx context.Context, id int64) (bool, error) {
	return NewBase[domain.Professional](r.db, "professional").Exists(ctx, id)
}
