package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/nurzhan-dev/insurance-crm/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReminderService struct {
	repo     *repository.ReminderRepository
	userRepo *repository.UserRepository
}

func NewReminderService(repo *repository.ReminderRepository, userRepo *repository.UserRepository) *ReminderService {
	return &ReminderService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// CreateReminder stores a new reminder for an agent.
func (s *ReminderService) CreateReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	if reminder.Title == "" {
		return nil, fmt.Errorf("reminder title is required")
	}
	if reminder.DueDate.IsZero() {
		return nil, fmt.Errorf("reminder due date is required")
	}
	if reminder.Type == "" {
		reminder.Type = models.ReminderTypeCustom
	}
	return s.repo.CreateReminder(ctx, reminder)
}

// GetReminder retrieves a reminder by its ID.
func (s *ReminderService) GetReminder(ctx context.Context, id string) (*models.Reminder, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder ID: %v", err)
	}
	return s.repo.GetReminderByID(ctx, objID)
}

// GetReminders returns an agent's reminders.
func (s *ReminderService) GetReminders(ctx context.Context, agentID primitive.ObjectID, includeCompleted bool) ([]models.Reminder, error) {
	return s.repo.GetReminders(ctx, agentID, includeCompleted)
}

// UpdateReminder updates an existing reminder.
func (s *ReminderService) UpdateReminder(ctx context.Context, id string, updated *models.Reminder) (*models.Reminder, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder ID: %v", err)
	}

	existing, err := s.repo.GetReminderByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("reminder not found: %v", err)
	}

	updated.ID = existing.ID
	updated.AgentID = existing.AgentID
	updated.CreatedAt = existing.CreatedAt
	if updated.DueDate != existing.DueDate {
		// Re-arm the email notification when the due date moves.
		updated.Notified = false
	}

	return s.repo.UpdateReminder(ctx, objID, updated)
}

// CompleteReminder marks a reminder as done.
func (s *ReminderService) CompleteReminder(ctx context.Context, id string) (*models.Reminder, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder ID: %v", err)
	}

	reminder, err := s.repo.GetReminderByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("reminder not found: %v", err)
	}

	reminder.Completed = true
	return s.repo.UpdateReminder(ctx, objID, reminder)
}

// DeleteReminder deletes a reminder.
func (s *ReminderService) DeleteReminder(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid reminder ID: %v", err)
	}
	return s.repo.DeleteReminder(ctx, objID)
}

// SendDueReminders emails agents about reminders due within the next 24
// hours. Called hourly by the scheduler.
func (s *ReminderService) SendDueReminders(ctx context.Context) error {
	now := time.Now()
	due, err := s.repo.GetDueUnnotified(ctx, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to fetch due reminders: %v", err)
	}

	for _, reminder := range due {
		agent, err := s.userRepo.GetUserByID(ctx, reminder.AgentID)
		if err != nil {
			logrus.WithError(err).WithField("reminder_id", reminder.ID.Hex()).Warn("Agent not found for due reminder")
			continue
		}

		body := fmt.Sprintf("Reminder: %s\nDue: %s\n\n%s",
			reminder.Title, reminder.DueDate.Format("Jan 2, 2006 15:04"), reminder.Description)
		if err := email.SendEmail(agent.Email, "Reminder due soon", body); err != nil {
			logrus.WithError(err).WithField("reminder_id", reminder.ID.Hex()).Warn("Failed to send reminder email")
			continue
		}

		if err := s.repo.MarkNotified(ctx, reminder.ID); err != nil {
			logrus.WithError(err).WithField("reminder_id", reminder.ID.Hex()).Warn("Failed to mark reminder notified")
		}
	}

	logrus.WithField("count", len(due)).Info("Due reminder scan finished")
	return nil
}
