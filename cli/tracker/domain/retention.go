package domain

import (
	"fmt"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/storage"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var now = time.Now // For mocking in tests

// Retention планово удаляет из журнала треков записи старше заданного
// срока хранения. Нулевой срок отключает очистку.
type Retention struct {
	Tracks         *storage.TrackStore
	RetentionDays  int
	CronExpression string

	cronScheduler *cron.Cron
}

// RunOnce выполняет одну очистку и возвращает количество удалённых точек.
func (r *Retention) RunOnce() int {
	if r.RetentionDays <= 0 {
		logrus.Debug("Срок хранения не задан, очистка пропущена")
		return 0
	}
	cutoff := now().AddDate(0, 0, -r.RetentionDays).UnixMilli()
	removed := r.Tracks.PruneBefore(cutoff)
	logrus.WithField("removed", removed).Info("Очистка журнала треков завершена")
	return removed
}

func (r *Retention) Start() error {
	if r.RetentionDays <= 0 {
		logrus.Info("Срок хранения не задан, плановая очистка отключена")
		return nil
	}

	expr := r.CronExpression
	if expr == "" {
		expr = "@every 6h"
	}

	r.cronScheduler = cron.New()
	_, err := r.cronScheduler.AddFunc(expr, func() { r.RunOnce() })
	if err != nil {
		return fmt.Errorf("ошибка при настройке cron-задачи: %w", err)
	}

	r.cronScheduler.Start()
	logrus.WithField("cron", expr).Info("Запланирована очистка журнала треков")
	return nil
}

func (r *Retention) Stop() {
	if r.cronScheduler != nil {
		r.cronScheduler.Stop()
		logrus.Info("Cron-планировщик остановлен")
	}
}
