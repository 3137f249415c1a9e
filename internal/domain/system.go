package domain

import (
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleAssistant  UserRole = "assistant"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleAssistant:
		return true
	}
	return false
}

// SysUser staff member allowed to sign in
type SysUser struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	Email        string     `gorm:"size:200;uniqueIndex;not null" json:"email"`
	Role         UserRole   `gorm:"size:20;not null" json:"role"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	LastAccess   *time.Time `json:"last_access"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

type NotificationCategory string

const (
	CategorySystem    NotificationCategory = "system"
	CategoryWorkOrder NotificationCategory = "work_order"
	CategoryFinancial NotificationCategory = "financial"
	CategoryStock     NotificationCategory = "stock"
)

func (c NotificationCategory) Valid() bool {
	switch c {
	case CategorySystem, CategoryWorkOrder, CategoryFinancial, CategoryStock:
		return true
	}
	return false
}

// Notification message shown to a user. A nil UserID is a broadcast.
type Notification struct {
	ID        int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64               `gorm:"index" json:"user_id"`
	Title     string               `gorm:"size:200;not null" json:"title"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Category  NotificationCategory `gorm:"size:20;index;not null" json:"category"`
	Read      bool                 `gorm:"index;not null;default:false" json:"read"`
	CreatedAt time.Time            `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (Notification) TableName() string {
	return "notification"
}
