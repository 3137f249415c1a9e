package repository

import (
	"context"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

type NotificationFilter struct {
	UserID     int64
	UnreadOnly bool
	Category   domain.NotificationCategory
	Page       int
	PageSize   int
}

// GormNotificationRepository per user and broadcast notifications
type GormNotificationRepository struct {
	*Base[domain.Notification]
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{Base: NewBase[domain.Notification](db, "notification")}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *domain.Notification) (int64, error) {
	if !n.Category.Valid() {
		return 0, domain.ValidationError("invalid category %q", n.Category)
	}
	if err := r.Insert(ctx, n); err != nil {
		return 0, err
	}
	return n.ID, nil
}

func visibleTo(userID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id = ? OR user_id IS NULL)", userID)
	}
}

// ListForUser returns the user's own notifications plus broadcasts, newest first
func (r *GormNotificationRepository) ListForUser(ctx context.Context, f NotificationFilter) ([]domain.Notification, int64, error) {
	c := Criteria{
		Eq:       map[string]interface{}{},
		Scopes:   []func(*gorm.DB) *gorm.DB{visibleTo(f.UserID)},
		Order:    "created_at DESC, id DESC",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.UnreadOnly {
		c.Eq["read"] = false
	}
	if f.Category != "" {
		c.Eq["category"] = f.Category
	}
	return r.ListFiltered(ctx, c)
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	result := r.DB(ctx).Model(&domain.Notification{}).
		Scopes(visibleTo(userID)).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("notification", id)
	}
	return nil
}

// MarkAllRead returns how many notifications changed
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result := r.DB(ctx).Model(&domain.Notification{}).
		Scopes(visibleTo(userID)).
		Where("read = ?", false).
		Update("read", true)
	return result.RowsAffected, translate(result.Error)
}

func (r *GormNotificationRepository) DeleteForUser(ctx context.Context, userID, id int64) error {
	result := r.DB(ctx).Scopes(visibleTo(userID)).Where("id = ?", id).Delete(&domain.Notification{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("notification", id)
	}
	return nil
}

// PurgeRead deletes read notifications created before the given time
func (r *GormNotificationRepository) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	result := r.DB(ctx).Where("read = ? AND created_at < ?", true, before).Delete(&domain.Notification{})
	return result.RowsAffected, translate(result.Error)
}
