package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/sirupsen/logrus"
)

// RenewalScanner creates renewal reminders for policies approaching their
// renewal date.
type RenewalScanner struct {
	SaleRepo     *repository.SaleRepository
	ReminderRepo *repository.ReminderRepository
}

// NewRenewalScanner creates a new instance of RenewalScanner.
func NewRenewalScanner(saleRepo *repository.SaleRepository, reminderRepo *repository.ReminderRepository) *RenewalScanner {
	return &RenewalScanner{
		SaleRepo:     saleRepo,
		ReminderRepo: reminderRepo,
	}
}

// RunDailyScan finds policies renewing within the next 30 days and creates a
// renewal reminder for each, skipping sales that already have one.
func (s *RenewalScanner) RunDailyScan(ctx context.Context) error {
	now := time.Now()
	sales, err := s.SaleRepo.GetSalesRenewingBetween(ctx, now, now.Add(30*24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to fetch renewing sales: %v", err)
	}

	created := 0
	for i := range sales {
		sale := &sales[i]
		if sale.RenewalDate == nil {
			continue
		}

		exists, err := s.ReminderRepo.HasReminderForSale(ctx, sale.ID)
		if err != nil {
			logrus.WithError(err).WithField("sale_id", sale.ID.Hex()).Warn("Failed to check existing renewal reminder")
			continue
		}
		if exists {
			continue
		}

		reminder := &models.Reminder{
			AgentID:     sale.AgentID,
			ClientID:    &sale.ClientID,
			SaleID:      &sale.ID,
			Type:        models.ReminderTypeRenewal,
			Title:       fmt.Sprintf("Policy %s renewal due", sale.PolicyNumber),
			Description: fmt.Sprintf("The %s policy renews on %s.", sale.PolicyType, sale.RenewalDate.Format("Jan 2, 2006")),
			DueDate:     *sale.RenewalDate,
		}
		if _, err := s.ReminderRepo.CreateReminder(ctx, reminder); err != nil {
			logrus.WithError(err).WithField("sale_id", sale.ID.Hex()).Warn("Failed to create renewal reminder")
			continue
		}
		created++
	}

	logrus.WithFields(logrus.Fields{
		"scanned": len(sales),
		"created": created,
	}).Info("Renewal scan finished")
	return nil
}
