package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/protechlab/labdesk/config"
	"github.com/protechlab/labdesk/internal/notify"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// EventProvider provides the in-process domain event bus
type EventProvider interface {
	Bus() EventBus.Bus
}

// NotifierProvider provides the notification writer
type NotifierProvider interface {
	Notifier() *notify.Notifier
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	EventProvider
	NotifierProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
