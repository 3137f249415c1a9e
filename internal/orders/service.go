package orders

import (
	"context"
	"strings"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
)

// ItemInput a line item as sent by clients. ID is set for items that
// already exist on the order.
type ItemInput struct {
	ID         *int64
	ServiceID  *int64
	Quantity   *int
	ToothColor *string
	ShadeScale *domain.ShadeScale
	Material   *domain.MaterialKind
	UnitPrice  *decimal.Decimal
	Notes      *string
}

// Input fields of a new order
type Input struct {
	ClientID       *int64
	ProfessionalID *int64
	DeliveryDate   *time.Time
	Urgent         bool
	Status         domain.OrderStatus
	Notes          string
	Items          []ItemInput
}

// Patch partial order update. ItemsSet replaces the whole item set with
// Items, an empty slice removes every item.
type Patch struct {
	ClientID        *int64
	ProfessionalID  *int64
	ProfessionalSet bool
	DeliveryDate    *time.Time
	Urgent          *bool
	Status          *domain.OrderStatus
	Notes           *string
	Items           []ItemInput
	ItemsSet        bool
}

func (p Patch) Empty() bool {
	return p.ClientID == nil && !p.ProfessionalSet && p.DeliveryDate == nil &&
		p.Urgent == nil && p.Status == nil && p.Notes == nil && !p.ItemsSet
}

// Change order state before and after an update
type Change struct {
	Before domain.WorkOrder
	After  domain.WorkOrder
}

func (c Change) StatusChanged() bool {
	return c.Before.Status != c.After.Status
}

// Service work order operations
type Service struct {
	repo repository.OrderRepository
	now  func() time.Time
}

func NewService(repo repository.OrderRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Estimate delivery date of an order created now
func (s *Service) Estimate(urgent bool) time.Time {
	return EstimateDeliveryDate(s.now(), urgent, nil)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.WorkOrder, error) {
	if in.ClientID == nil {
		return nil, domain.ValidationError("required fields missing: client_id")
	}
	status := in.Status
	if status == "" {
		status = domain.OrderPending
	}
	if !status.Valid() {
		return nil, domain.ValidationError("invalid status %q", status)
	}

	created := s.now()
	order := &domain.WorkOrder{
		ClientID:       *in.ClientID,
		ProfessionalID: in.ProfessionalID,
		DeliveryDate:   EstimateDeliveryDate(created, in.Urgent, in.DeliveryDate),
		Urgent:         in.Urgent,
		Status:         status,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      created,
	}

	err := s.repo.Transaction(ctx, func(repo repository.OrderRepository) error {
		if err := checkClient(ctx, repo, order.ClientID); err != nil {
			return err
		}
		if err := checkProfessional(ctx, repo, order.ProfessionalID); err != nil {
			return err
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		for i := range in.Items {
			if err := insertItem(ctx, repo, order.ID, in.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update applies the patch in one transaction. Status changes must follow
// CanTransition. Changing urgency without a delivery date re-estimates
// the delivery from the creation date.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Change, error) {
	if p.Empty() {
		return nil, domain.NoOpUpdateError()
	}
	var change Change
	err := s.repo.Transaction(ctx, func(repo repository.OrderRepository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		change.Before = *order

		fields, err := s.orderFields(ctx, repo, *order, p)
		if err != nil {
			return err
		}
		if p.ItemsSet {
			if err := syncItems(ctx, repo, id, p.Items); err != nil {
				return err
			}
			fields["updated_at"] = s.now()
		}
		if err := repo.UpdateOrder(ctx, id, fields); err != nil {
			return err
		}
		after, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		change.After = *after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (s *Service) orderFields(ctx context.Context, repo repository.OrderRepository, order domain.WorkOrder, p Patch) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if p.ClientID != nil {
		if err := checkClient(ctx, repo, *p.ClientID); err != nil {
			return nil, err
		}
		fields["client_id"] = *p.ClientID
	}
	if p.ProfessionalSet {
		if err := checkProfessional(ctx, repo, p.ProfessionalID); err != nil {
			return nil, err
		}
		if p.ProfessionalID == nil {
			fields["professional_id"] = nil
		} else {
			fields["professional_id"] = *p.ProfessionalID
		}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, domain.ValidationError("invalid status %q", *p.Status)
		}
		if !CanTransition(order.Status, *p.Status) {
			return nil, domain.ValidationError("cannot change status from %s to %s", order.Status, *p.Status)
		}
		fields["status"] = *p.Status
	}
	if p.Notes != nil {
		fields["notes"] = strings.TrimSpace(*p.Notes)
	}
	if p.Urgent != nil {
		fields["urgent"] = *p.Urgent
	}
	switch {
	case p.DeliveryDate != nil:
		fields["delivery_date"] = common.DateOnly(*p.DeliveryDate)
	case p.Urgent != nil && *p.Urgent != order.Urgent:
		fields["delivery_date"] = EstimateDeliveryDate(order.CreatedAt, *p.Urgent, nil)
	}
	return fields, nil
}

// syncItems makes the order's item set equal to items: known ids are
// updated in place, new entries inserted, the rest deleted.
func syncItems(ctx context.Context, repo repository.OrderRepository, orderID int64, items []ItemInput) error {
	current, err := repo.Items(ctx, orderID)
	if err != nil {
		return err
	}
	existing := make(map[int64]domain.OrderItem, len(current))
	for _, item := range current {
		existing[item.ID] = item
	}

	keep := make(map[int64]bool, len(items))
	for _, in := range items {
		if in.ID == nil {
			if err := insertItem(ctx, repo, orderID, in); err != nil {
				return err
			}
			continue
		}
		cur, ok := existing[*in.ID]
		if !ok {
			return domain.ValidationError("item %d does not belong to order %d", *in.ID, orderID)
		}
		keep[cur.ID] = true
		fields, err := itemFields(ctx, repo, cur, in)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			continue
		}
		if err := repo.UpdateItem(ctx, cur.ID, fields); err != nil {
			return err
		}
	}

	var stale []int64
	for _, item := range current {
		if !keep[item.ID] {
			stale = append(stale, item.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	_, err = repo.DeleteItems(ctx, orderID, stale...)
	return err
}

func validateItem(in ItemInput) error {
	if in.Quantity != nil && *in.Quantity < 1 {
		return domain.ValidationError("item quantity must be >= 1")
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return domain.ValidationError("item unit_price must be >= 0")
	}
	if in.ShadeScale != nil && *in.ShadeScale != "" && !in.ShadeScale.Valid() {
		return domain.ValidationError("invalid shade_scale %q", *in.ShadeScale)
	}
	if in.Material != nil && *in.Material != "" && !in.Material.Valid() {
		return domain.ValidationError("invalid material %q", *in.Material)
	}
	return nil
}

func insertItem(ctx context.Context, repo repository.OrderRepository, orderID int64, in ItemInput) error {
	if in.ServiceID == nil {
		return domain.ValidationError("item service_id is required")
	}
	if err := validateItem(in); err != nil {
		return err
	}
	item := domain.OrderItem{WorkOrderID: orderID, ServiceID: *in.ServiceID, Quantity: 1}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
		// the service must still exist even when the price is given
		if _, err := repo.ServicePrice(ctx, item.ServiceID); err != nil {
			return err
		}
	} else {
		price, err := repo.ServicePrice(ctx, item.ServiceID)
		if err != nil {
			return err
		}
		item.UnitPrice = price
	}
	if in.ToothColor != nil {
		item.ToothColor = strings.TrimSpace(*in.ToothColor)
	}
	if in.ShadeScale != nil {
		item.ShadeScale = *in.ShadeScale
	}
	if in.Material != nil {
		item.Material = *in.Material
	}
	if in.Notes != nil {
		item.Notes = *in.Notes
	}
	item.Total = LineTotal(item.Quantity, item.UnitPrice)
	return repo.CreateItem(ctx, &item)
}

func itemFields(ctx context.Context, repo repository.OrderRepository, cur domain.OrderItem, in ItemInput) (map[string]interface{}, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.ServiceID != nil && *in.ServiceID != cur.ServiceID {
		if _, err := repo.ServicePrice(ctx, *in.ServiceID); err != nil {
			return nil, err
		}
		fields["service_id"] = *in.ServiceID
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	if in.UnitPrice != nil {
		fields["unit_price"] = *in.UnitPrice
	}
	if in.Quantity != nil || in.UnitPrice != nil {
		fields["total"] = RecomputeLineTotal(cur, in.Quantity, in.UnitPrice)
	}
	if in.ToothColor != nil {
		fields["tooth_color"] = strings.TrimSpace(*in.ToothColor)
	}
	if in.ShadeScale != nil {
		fields["shade_scale"] = *in.ShadeScale
	}
	if in.Material != nil {
		fields["material"] = *in.Material
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	return fields, nil
}

func checkClient(ctx context.Context, repo repository.OrderRepository, id int64) error {
	ok, err := repo.ClientExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationError("client %d does not exist", id)
	}
	return nil
}

func checkProfessional(ctx context.Context, repo repository.OrderRepository, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := repo.ProfessionalExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationError("professional %d does not exist", *id)
	}
	return nil
}

// Delete removes the order and its items together
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(repo repository.OrderRepository) error {
		if _, err := repo.GetOrder(ctx, id); err != nil {
			return err
		}
		if _, err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repo.DeleteOrder(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) GetDetailed(ctx context.Context, id int64) (*domain.WorkOrderDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *Service) List(ctx context.Context, f repository.OrderFilter) ([]domain.WorkOrder, int64, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.repo.ListOrders(ctx, f)
}

func (s *Service) ListDetailed(ctx context.Context, f repository.OrderFilter) ([]domain.WorkOrderDetail, int64, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.repo.ListDetails(ctx, f)
}

func (s *Service) Items(ctx context.Context, id int64) ([]domain.OrderItemDetail, error) {
	if _, err := s.repo.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ItemDetails(ctx, id)
}

func checkFilter(f repository.OrderFilter) error {
	if f.Status != "" && !f.Status.Valid() {
		return domain.ValidationError("invalid status %q", f.Status)
	}
	return nil
}
