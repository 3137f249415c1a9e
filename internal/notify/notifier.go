// Package notify turns domain events into stored notifications and
// optional email copies.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/protechlab/labdesk/pkg/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// Notifier writes notifications. Helpers create broadcasts when userID is nil.
type Notifier struct {
	notifications *repository.GormNotificationRepository
	materials     *repository.GormMaterialRepository
	mailer        Mailer
	printer       *message.Printer
	timeout       time.Duration
}

// NewNotifier mailer may be nil. locale is a BCP 47 tag such as pt-BR.
func NewNotifier(db *gorm.DB, mailer Mailer, locale string) *Notifier {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	return &Notifier{
		notifications: repository.NewGormNotificationRepository(db),
		materials:     repository.NewGormMaterialRepository(db),
		mailer:        mailer,
		printer:       message.NewPrinter(tag),
		timeout:       10 * time.Second,
	}
}

// Money formats an amount with the locale separators, R$ 1.234,50 for pt-BR
func (n *Notifier) Money(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return n.printer.Sprintf("R$ %.2f", f)
}

func (n *Notifier) Notify(ctx context.Context, note *domain.Notification) (int64, error) {
	return n.notifications.Create(ctx, note)
}

// OrderNotification work order notice, prefixed with the order number
func (n *Notifier) OrderNotification(ctx context.Context, orderID int64, title, text string, userID *int64) (int64, error) {
	return n.Notify(ctx, &domain.Notification{
		UserID:   userID,
		Title:    title,
		Message:  fmt.Sprintf("Ordem de Serviço #%d: %s", orderID, text),
		Category: domain.CategoryWorkOrder,
	})
}

// FinancialNotification financial notice, copied by email when a mailer is set
func (n *Notifier) FinancialNotification(ctx context.Context, title, text string, userID *int64) (int64, error) {
	id, err := n.Notify(ctx, &domain.Notification{
		UserID:   userID,
		Title:    title,
		Message:  text,
		Category: domain.CategoryFinancial,
	})
	if err != nil {
		return 0, err
	}
	n.mail(title, text)
	return id, nil
}

// StockNotification low stock alert for one material
func (n *Notifier) StockNotification(ctx context.Context, m domain.Material, userID *int64) (int64, error) {
	title := "Alerta de Estoque"
	text := fmt.Sprintf("O material \"%s\" (ID: %d) está com estoque baixo: %s %s.",
		m.Name, m.ID, m.Quantity.String(), m.Unit)
	id, err := n.Notify(ctx, &domain.Notification{
		UserID:   userID,
		Title:    title,
		Message:  text,
		Category: domain.CategoryStock,
	})
	if err != nil {
		return 0, err
	}
	n.mail(title, text)
	return id, nil
}

func (n *Notifier) mail(subject, body string) {
	if n.mailer == nil {
		return
	}
	if err := n.mailer.Send(subject, body); err != nil {
		zap.L().Warn("notification mail failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Register subscribes the notifier to the event bus topics
func (n *Notifier) Register(bus EventBus.Bus) error {
	handlers := map[string]interface{}{
		TopicOrderCreated: n.onOrderCreated,
		TopicOrderStatus:  n.onOrderStatus,
		TopicStockLow:     n.onStockLow,
		TopicOverdue:      n.onOverdue,
		TopicPaid:         n.onPaid,
	}
	for topic, fn := range handlers {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}

// events are delivered after the request finished its own work, so the
// handlers run on a detached context with a timeout
func (n *Notifier) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), n.timeout)
}

func (n *Notifier) onOrderCreated(ev OrderEvent) {
	ctx, cancel := n.context()
	defer cancel()
	title := "Nova ordem de serviço"
	if ev.Urgent {
		title = "Nova ordem de serviço urgente"
	}
	text := "entrega prevista para " + ev.DeliveryDate.In(time.Local).Format("02/01/2006")
	if _, err := n.OrderNotification(ctx, ev.OrderID, title, text, nil); err != nil {
		zap.L().Error("order notification failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}

func (n *Notifier) onOrderStatus(ev OrderEvent) {
	ctx, cancel := n.context()
	defer cancel()
	text := fmt.Sprintf("status alterado de %s para %s", statusLabel(ev.Previous), statusLabel(ev.Status))
	if _, err := n.OrderNotification(ctx, ev.OrderID, "Status da ordem atualizado", text, nil); err != nil {
		zap.L().Error("order notification failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}

func (n *Notifier) onStockLow(ev StockEvent) {
	ctx, cancel := n.context()
	defer cancel()
	if _, err := n.StockNotification(ctx, ev.Material, nil); err != nil {
		zap.L().Error("stock notification failed", zap.Int64("material_id", ev.Material.ID), zap.Error(err))
	}
}

func (n *Notifier) onOverdue(ev OverdueEvent) {
	if ev.Receivable+ev.Payable == 0 {
		return
	}
	ctx, cancel := n.context()
	defer cancel()
	text := n.printer.Sprintf("%d contas a receber e %d contas a pagar venceram.", ev.Receivable, ev.Payable)
	if _, err := n.FinancialNotification(ctx, "Contas vencidas", text, nil); err != nil {
		zap.L().Error("overdue notification failed", zap.Error(err))
	}
}

func (n *Notifier) onPaid(ev PaymentEvent) {
	ctx, cancel := n.context()
	defer cancel()
	var title string
	switch ev.Entry.Kind {
	case domain.Receivable:
		title = "Pagamento recebido"
	case domain.Payable:
		title = "Pagamento efetuado"
	}
	text := fmt.Sprintf("%s: %s em %s", ev.Entry.Description, n.Money(ev.Entry.Amount), paidOn(ev.Entry))
	if _, err := n.FinancialNotification(ctx, title, text, nil); err != nil {
		zap.L().Error("payment notification failed", zap.Int64("entry_id", ev.Entry.ID), zap.Error(err))
	}
}

func paidOn(e domain.AccountEntry) string {
	if e.PaymentDate == nil {
		return "-"
	}
	return e.PaymentDate.In(time.Local).Format("02/01/2006")
}

func statusLabel(s domain.OrderStatus) string {
	switch s {
	case domain.OrderPending:
		return "pendente"
	case domain.OrderInProgress:
		return "em andamento"
	case domain.OrderDone:
		return "concluída"
	case domain.OrderDelivered:
		return "entregue"
	case domain.OrderCancelled:
		return "cancelada"
	}
	return string(s)
}

// LowStockDigest writes one broadcast listing every material at or under
// its minimum. It returns the number of materials listed.
func (n *Notifier) LowStockDigest(ctx context.Context) (int, error) {
	items, err := n.materials.LowStock(ctx)
	if err != nil || len(items) == 0 {
		return 0, err
	}
	lines := make([]string, 0, len(items))
	for _, m := range items {
		lines = append(lines, fmt.Sprintf("%s: %s %s (mínimo %s)", m.Name, m.Quantity.String(), m.Unit, m.MinStock.Decimal.String()))
	}
	title := "Resumo de estoque baixo"
	text := strings.Join(lines, "\n")
	if _, err := n.Notify(ctx, &domain.Notification{Title: title, Message: text, Category: domain.CategoryStock}); err != nil {
		return 0, err
	}
	n.mail(title, text)
	return len(items), nil
}

// PurgeRead removes read notifications older than retentionDays
func (n *Notifier) PurgeRead(ctx context.Context, retentionDays int, now time.Time) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return n.notifications.PurgeRead(ctx, common.DateOnly(now).AddDate(0, 0, -retentionDays))
}
