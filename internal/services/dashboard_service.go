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

// DashboardSummary is the aggregated view an agent sees on login.
type DashboardSummary struct {
	ClientCount       int64                 `json:"client_count"`
	MonthSales        repository.SaleTotals `json:"month_sales"`
	Goals             []GoalWithStatus      `json:"goals"`
	UpcomingReminders []models.Reminder     `json:"upcoming_reminders"`
	RecentActivities  []models.Activity     `json:"recent_activities"`
}

// DashboardService aggregates the per-agent overview from the other
// repositories.
type DashboardService struct {
	clientRepo      *repository.ClientRepository
	saleRepo        *repository.SaleRepository
	goalRepo        *repository.GoalRepository
	reminderRepo    *repository.ReminderRepository
	ActivityService *ActivityService
	ProgressService *GoalProgressService
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	clientRepo *repository.ClientRepository,
	saleRepo *repository.SaleRepository,
	goalRepo *repository.GoalRepository,
	reminderRepo *repository.ReminderRepository,
	activityService *ActivityService,
	progressService *GoalProgressService,
) *DashboardService {
	return &DashboardService{
		clientRepo:      clientRepo,
		saleRepo:        saleRepo,
		goalRepo:        goalRepo,
		reminderRepo:    reminderRepo,
		ActivityService: activityService,
		ProgressService: progressService,
	}
}

// GetDashboard builds the agent's overview. When recalc is set the goal
// ledger is recalculated first; recalculation errors propagate since the
// refresh was explicitly requested.
func (s *DashboardService) GetDashboard(ctx context.Context, agentID primitive.ObjectID, recalc bool) (*DashboardSummary, error) {
	if recalc {
		if err := s.ProgressService.RecalculateAll(ctx, &agentID); err != nil {
			return nil, fmt.Errorf("failed to recalculate goal progress: %v", err)
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	clientCount, err := s.clientRepo.CountClients(ctx, agentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %v", err)
	}

	monthSales, err := s.saleRepo.AggregateSales(ctx, agentID, &monthStart, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate month sales: %v", err)
	}

	goals, err := s.goalRepo.GetActiveGoalsByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}

	reminders, err := s.reminderRepo.GetUpcoming(ctx, agentID, now.Add(7*24*time.Hour), 10)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming reminders: %v", err)
	}

	activities, err := s.ActivityService.GetRecentActivities(ctx, agentID, 20)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to fetch recent activities for dashboard")
		activities = nil
	}

	return &DashboardSummary{
		ClientCount:       clientCount,
		MonthSales:        *monthSales,
		Goals:             decorateGoals(goals, now),
		UpcomingReminders: reminders,
		RecentActivities:  activities,
	}, nil
}
