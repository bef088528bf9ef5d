package cron

import (
	"context"

	"github.com/nurzhan-dev/insurance-crm/internal/jobs"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs wires the background jobs: due-reminder emails, renewal
// scanning and the nightly goal progress recalculation.
func StartCronJobs(reminderService *services.ReminderService, progressService *services.GoalProgressService, renewalScanner *jobs.RenewalScanner) {
	c := cron.New()

	// Email agents about reminders due soon
	c.AddFunc("@hourly", func() {
		err := reminderService.SendDueReminders(context.Background())
		if err != nil {
			logrus.WithError(err).Error("SendDueReminders failed")
		}
	})

	// Create reminders for policies renewing soon
	c.AddFunc("0 7 * * *", func() {
		err := renewalScanner.RunDailyScan(context.Background())
		if err != nil {
			logrus.WithError(err).Error("RunDailyScan failed")
		}
	})

	// Nightly drift correction for goal progress
	c.AddFunc("0 2 * * *", func() {
		err := progressService.RecalculateAll(context.Background(), nil)
		if err != nil {
			logrus.WithError(err).Error("RecalculateAll failed")
		}
	})

	c.Start()
}
