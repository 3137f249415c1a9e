package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/protechlab/labdesk/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDatabase opens postgres or sqlite and panics when the store is unreachable
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(postgresDSN(cfg))
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg, workdir))
	default:
		panic(fmt.Sprintf("unsupported database type %q", cfg.Type))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	switch cfg.Type {
	case "sqlite":
		// sqlite serializes writers, a single connection avoids busy errors
		sqlDB.SetMaxOpenConns(1)
	default:
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err := sqlDB.Ping(); err != nil {
		panic(err)
	}
	return db
}

func postgresDSN(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	tz := time.Local.String()
	if tz == "Local" {
		tz = "UTC"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, tz)
}

func sqliteDSN(cfg config.DBConfig, workdir string) string {
	if cfg.Name == ":memory:" {
		return "file::memory:?cache=shared&_loc=auto"
	}
	path := cfg.Name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workdir, "data", path)
	}
	return "file:" + path + "?_loc=auto&_busy_timeout=5000"
}
