package services

import (
	"context"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// LogActivity logs an agent activity
func (s *ActivityService) LogActivity(
	ctx context.Context,
	agentID primitive.ObjectID,
	actionType string,
	targetID primitive.ObjectID,
	message string,
) error {
	activity := &models.Activity{
		AgentID:   agentID,
		Type:      actionType,
		TargetID:  targetID,
		Message:   message,
		Timestamp: time.Now(),
	}

	err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to log activity in service")
		return err
	}
	return nil
}

// GetRecentActivities returns recent actions performed by an agent
func (s *ActivityService) GetRecentActivities(ctx context.Context, agentID primitive.ObjectID, limit int) ([]models.Activity, error) {
	return s.repo.GetAgentActivities(ctx, agentID, limit)
}
