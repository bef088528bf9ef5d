package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalWithStatus decorates a goal with its derived status and progress
// percentage for API responses.
type GoalWithStatus struct {
	models.Goal
	Status          string  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"`
}

// GoalService encapsulates the business logic for goals.
type GoalService struct {
	repo *repository.GoalRepository
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo *repository.GoalRepository) *GoalService {
	return &GoalService{
		repo: repo,
	}
}

// CreateGoal processes the goal creation logic and stores it in the database.
func (s *GoalService) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.Title == "" {
		logger.Log.Warn("Goal title is empty during creation")
		return nil, fmt.Errorf("goal title is required")
	}
	if !models.ValidMetricType(goal.MetricType) {
		logger.Log.WithField("metric_type", goal.MetricType).Warn("Unknown metric type during goal creation")
		return nil, fmt.Errorf("unknown metric type: %s", goal.MetricType)
	}
	if goal.TargetValue <= 0 {
		return nil, fmt.Errorf("target value must be positive")
	}

	// The ledger owns the current value; a new goal always starts at zero.
	goal.CurrentValue = 0
	goal.IsActive = true

	createdGoal, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create goal")
		return nil, fmt.Errorf("failed to create goal: %v", err)
	}

	logger.Log.WithField("goal_id", createdGoal.ID.Hex()).Info("Goal created in service layer")
	return createdGoal, nil
}

// GetGoal retrieves a goal by its ID.
func (s *GoalService) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in GetGoal")
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}

	goal, err := s.repo.GetGoalByID(ctx, objID)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Error("Failed to get goal from repository")
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	return goal, nil
}

// UpdateGoal updates a goal's editable fields. The current value is owned by
// the progress ledger and is carried over from the stored goal untouched.
func (s *GoalService) UpdateGoal(ctx context.Context, id string, updatedGoal *models.Goal) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in UpdateGoal")
		return nil, fmt.Errorf("invalid goal ID: %v", err)
	}

	existing, err := s.repo.GetGoalByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("goal not found: %v", err)
	}

	if updatedGoal.MetricType != "" && !models.ValidMetricType(updatedGoal.MetricType) {
		return nil, fmt.Errorf("unknown metric type: %s", updatedGoal.MetricType)
	}

	updatedGoal.ID = existing.ID
	updatedGoal.AgentID = existing.AgentID
	updatedGoal.CurrentValue = existing.CurrentValue
	updatedGoal.CreatedAt = existing.CreatedAt

	goal, err := s.repo.UpdateGoal(ctx, objID, updatedGoal)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Error("Failed to update goal")
		return nil, fmt.Errorf("failed to update goal: %v", err)
	}

	logger.Log.WithField("goal_id", id).Info("Goal updated successfully in service layer")
	return goal, nil
}

// DeleteGoal removes a goal from the database.
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Warn("Invalid goal ID in DeleteGoal")
		return fmt.Errorf("invalid goal ID: %v", err)
	}

	if err := s.repo.DeleteGoal(ctx, objID); err != nil {
		logger.Log.WithField("goal_id", id).WithError(err).Error("Failed to delete goal")
		return fmt.Errorf("failed to delete goal: %v", err)
	}

	logger.Log.WithField("goal_id", id).Info("Goal deleted successfully in service layer")
	return nil
}

// GetGoals retrieves an agent's goals decorated with derived status.
func (s *GoalService) GetGoals(ctx context.Context, agentID primitive.ObjectID, metricType string) ([]GoalWithStatus, error) {
	goals, err := s.repo.GetGoals(ctx, agentID, metricType)
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"agent_id":    agentID.Hex(),
			"metric_type": metricType,
		}).WithError(err).Error("Failed to get filtered goals in service")
		return nil, err
	}
	return decorateGoals(goals, time.Now()), nil
}

// GetAllGoals retrieves all goals with an optional limit, decorated with
// derived status (admin view).
func (s *GoalService) GetAllGoals(ctx context.Context, limit int64) ([]GoalWithStatus, error) {
	goals, err := s.repo.GetAllGoals(ctx, limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all goals")
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}
	return decorateGoals(goals, time.Now()), nil
}

func decorateGoals(goals []models.Goal, now time.Time) []GoalWithStatus {
	out := make([]GoalWithStatus, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalWithStatus{
			Goal:            g,
			Status:          g.Status(now),
			ProgressPercent: g.ProgressPercent(),
		})
	}
	return out
}
