package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// initJob schedules housekeeping. The overdue sweep is not scheduled, it
// only runs when a request asks for it.
func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@daily", a.SchedPurgeNotifications)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if spec := a.appConfig.Notify.StockDigestCron; spec != "" {
		if _, err := a.sched.AddFunc(spec, a.SchedLowStockDigest); err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedPurgeNotifications removes read notifications past the retention period
func (a *Application) SchedPurgeNotifications() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := a.notifier.PurgeRead(ctx, a.appConfig.Notify.RetentionDays, time.Now())
	if err != nil {
		zap.L().Error("purge notifications failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged read notifications", zap.Int64("count", n))
	}
}

// SchedLowStockDigest broadcasts the list of materials under their minimum
func (a *Application) SchedLowStockDigest() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := a.notifier.LowStockDigest(ctx)
	if err != nil {
		zap.L().Error("low stock digest failed", zap.Error(err))
		return
	}
	zap.L().Info("low stock digest", zap.Int("materials", n))
}
