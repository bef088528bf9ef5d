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

// ProgressGoalStore is the slice of the goal repository the ledger needs.
type ProgressGoalStore interface {
	GetActiveGoalsByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Goal, error)
	GetActiveGoals(ctx context.Context) ([]models.Goal, error)
	IncrementGoalProgress(ctx context.Context, id primitive.ObjectID, delta float64) error
	SetGoalProgress(ctx context.Context, id primitive.ObjectID, value float64) error
}

// SaleAggregator re-aggregates an agent's sale history for recalculation.
type SaleAggregator interface {
	AggregateSales(ctx context.Context, agentID primitive.ObjectID, from, to *time.Time) (*repository.SaleTotals, error)
}

// ClientCounter counts an agent's clients for recalculation.
type ClientCounter interface {
	CountClients(ctx context.Context, agentID primitive.ObjectID, from, to *time.Time) (int64, error)
}

// GoalProgressService is the goal progress ledger. It keeps each active
// goal's current value consistent with the sale/client events attributed to
// the owning agent: incremental adjustments on create/update/delete, plus a
// full recalculation path for drift correction.
//
// All increments go through an atomic clamp-add at the datastore, so the
// current value never goes negative and concurrent events cannot lose
// updates. Callers on the event paths are expected to log and swallow
// returned errors: the triggering sale/client write has already committed
// and must not be failed by goal accounting.
type GoalProgressService struct {
	goals   ProgressGoalStore
	sales   SaleAggregator
	clients ClientCounter
}

// NewGoalProgressService creates a new instance of GoalProgressService.
func NewGoalProgressService(goals ProgressGoalStore, sales SaleAggregator, clients ClientCounter) *GoalProgressService {
	return &GoalProgressService{
		goals:   goals,
		sales:   sales,
		clients: clients,
	}
}

// saleCreateDelta returns the contribution a new sale makes to a goal of the
// given metric type. Unknown or client-driven metrics contribute nothing.
func saleCreateDelta(metricType string, sale *models.Sale) float64 {
	switch metricType {
	case models.MetricSalesAmount:
		return sale.PremiumAmount
	case models.MetricCommission:
		return sale.CommissionAmount
	case models.MetricPoliciesSold, models.MetricSalesCount:
		return 1
	default:
		return 0
	}
}

// ApplySaleCreated credits every matching active goal of the agent with the
// new sale's contribution.
func (s *GoalProgressService) ApplySaleCreated(ctx context.Context, agentID primitive.ObjectID, sale *models.Sale) error {
	goals, err := s.goals.GetActiveGoalsByAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to fetch active goals: %v", err)
	}

	var lastErr error
	for i := range goals {
		delta := saleCreateDelta(goals[i].MetricType, sale)
		if delta == 0 {
			continue
		}
		if err := s.goals.IncrementGoalProgress(ctx, goals[i].ID, delta); err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID.Hex()).Error("Failed to apply sale to goal")
			lastErr = err
		}
	}
	return lastErr
}

// ApplySaleUpdated adjusts amount-based goals by the difference between the
// old and new sale. Count-based goals are insensitive to amount edits: an
// edited sale still counts as exactly one sale.
func (s *GoalProgressService) ApplySaleUpdated(ctx context.Context, agentID primitive.ObjectID, oldSale, newSale *models.Sale) error {
	goals, err := s.goals.GetActiveGoalsByAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to fetch active goals: %v", err)
	}

	var lastErr error
	for i := range goals {
		var delta float64
		switch goals[i].MetricType {
		case models.MetricSalesAmount:
			delta = newSale.PremiumAmount - oldSale.PremiumAmount
		case models.MetricCommission:
			delta = newSale.CommissionAmount - oldSale.CommissionAmount
		}
		if delta == 0 {
			continue
		}
		if err := s.goals.IncrementGoalProgress(ctx, goals[i].ID, delta); err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID.Hex()).Error("Failed to apply sale update to goal")
			lastErr = err
		}
	}
	return lastErr
}

// ApplySaleDeleted reverses the deleted sale's original contribution. The
// datastore clamps at zero, so over-deletion can never drive a goal negative.
func (s *GoalProgressService) ApplySaleDeleted(ctx context.Context, agentID primitive.ObjectID, sale *models.Sale) error {
	goals, err := s.goals.GetActiveGoalsByAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to fetch active goals: %v", err)
	}

	var lastErr error
	for i := range goals {
		delta := saleCreateDelta(goals[i].MetricType, sale)
		if delta == 0 {
			continue
		}
		if err := s.goals.IncrementGoalProgress(ctx, goals[i].ID, -delta); err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID.Hex()).Error("Failed to reverse sale on goal")
			lastErr = err
		}
	}
	return lastErr
}

// ApplyClientCreated credits the agent's client-count goals with one new
// client. There is no reversal on client deletion: acquisitions count
// permanently, and recalculation corrects any drift.
func (s *GoalProgressService) ApplyClientCreated(ctx context.Context, agentID primitive.ObjectID) error {
	goals, err := s.goals.GetActiveGoalsByAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to fetch active goals: %v", err)
	}

	var lastErr error
	for i := range goals {
		switch goals[i].MetricType {
		case models.MetricClientCount, models.MetricNewClients:
		default:
			continue
		}
		if err := s.goals.IncrementGoalProgress(ctx, goals[i].ID, 1); err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID.Hex()).Error("Failed to apply client to goal")
			lastErr = err
		}
	}
	return lastErr
}

// RecalculateAll re-derives current values from the underlying sale/client
// history, overwriting whatever the incremental path accumulated. Scope is a
// single agent when agentID is non-nil, otherwise every active goal. The
// aggregation is windowed to each goal's start/end dates; a goal without
// dates aggregates lifetime history.
//
// Unlike the event paths this is an explicit maintenance operation, so
// errors propagate to the caller.
func (s *GoalProgressService) RecalculateAll(ctx context.Context, agentID *primitive.ObjectID) error {
	var goals []models.Goal
	var err error
	if agentID != nil {
		goals, err = s.goals.GetActiveGoalsByAgent(ctx, *agentID)
	} else {
		goals, err = s.goals.GetActiveGoals(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch goals for recalculation: %v", err)
	}

	for i := range goals {
		value, ok, err := s.recalculateValue(ctx, &goals[i])
		if err != nil {
			return err
		}
		if !ok {
			// Unknown metric type: skip, not an error.
			logger.Log.WithFields(map[string]interface{}{
				"goal_id":     goals[i].ID.Hex(),
				"metric_type": goals[i].MetricType,
			}).Warn("Skipping goal with unknown metric type during recalculation")
			continue
		}
		if err := s.goals.SetGoalProgress(ctx, goals[i].ID, value); err != nil {
			return fmt.Errorf("failed to persist recalculated progress: %v", err)
		}
	}

	logger.Log.WithField("count", len(goals)).Info("Goal progress recalculated")
	return nil
}

func (s *GoalProgressService) recalculateValue(ctx context.Context, goal *models.Goal) (float64, bool, error) {
	switch goal.MetricType {
	case models.MetricSalesAmount, models.MetricCommission, models.MetricPoliciesSold, models.MetricSalesCount:
		totals, err := s.sales.AggregateSales(ctx, goal.AgentID, goal.StartDate, goal.EndDate)
		if err != nil {
			return 0, false, fmt.Errorf("failed to aggregate sales: %v", err)
		}
		switch goal.MetricType {
		case models.MetricSalesAmount:
			return totals.PremiumSum, true, nil
		case models.MetricCommission:
			return totals.CommissionSum, true, nil
		default:
			return float64(totals.Count), true, nil
		}
	case models.MetricClientCount, models.MetricNewClients:
		count, err := s.clients.CountClients(ctx, goal.AgentID, goal.StartDate, goal.EndDate)
		if err != nil {
			return 0, false, fmt.Errorf("failed to count clients: %v", err)
		}
		return float64(count), true, nil
	}
	return 0, false, nil
}
