package scheduler

import (
	"context"
	"time"

	"github.com/nvoss/ontime/internal/logging"
	"github.com/nvoss/ontime/internal/notify"
	"github.com/nvoss/ontime/internal/storage"
)

// AlarmChecker fires due alarms from the local substrate and delivers
// them to the configured webhooks.
type AlarmChecker struct {
	alertRepo  *storage.AlertRepo
	dispatcher *notify.Dispatcher

	// now is swappable for tests.
	now func() time.Time
}

// NewAlarmChecker creates a new alarm checker.
func NewAlarmChecker(alertRepo *storage.AlertRepo, webhookRepo *storage.WebhookRepo) *AlarmChecker {
	return &AlarmChecker{
		alertRepo:  alertRepo,
		dispatcher: notify.NewDispatcher(webhookRepo),
		now:        time.Now,
	}
}

// Check fires every alert that is due. An alert is marked fired before
// delivery; a delivery failure is logged but the alert never fires
// twice.
func (c *AlarmChecker) Check() {
	due, err := c.alertRepo.ListDue(c.now())
	if err != nil {
		logging.Warn("failed to list due alarms", logging.KeyError, err)
		return
	}

	if len(due) == 0 {
		return
	}

	ctx := context.Background()
	for _, alert := range due {
		if err := c.alertRepo.MarkFired(alert.ID); err != nil {
			logging.Warn("failed to mark alarm fired",
				logging.KeyAlert, alert.ID,
				logging.KeyError, err)
			continue
		}

		logging.Info("alarm fired",
			logging.KeyAlert, alert.ID,
			logging.KeyFireTime, alert.FireTime,
			"urgency", alert.Urgency.String())

		results := c.dispatcher.SendAlert(ctx, alert)
		for _, result := range results {
			if !result.Success {
				logging.Warn("alarm delivery failed",
					logging.KeyAlert, alert.ID,
					logging.KeyWebhook, result.WebhookName,
					logging.KeyError, result.Error)
			}
		}
	}
}

// DropMissed marks alarms that came due during a long suspend as fired
// without delivering them. A stale alarm is dropped, never fired
// retroactively.
func (c *AlarmChecker) DropMissed() {
	due, err := c.alertRepo.ListDue(c.now())
	if err != nil {
		logging.Warn("failed to list missed alarms", logging.KeyError, err)
		return
	}

	for _, alert := range due {
		if err := c.alertRepo.MarkFired(alert.ID); err != nil {
			continue
		}
		logging.Info("dropped missed alarm",
			logging.KeyAlert, alert.ID,
			logging.KeyFireTime, alert.FireTime)
	}
}
