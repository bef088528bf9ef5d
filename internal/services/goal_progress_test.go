package services

import (
	"context"
	"testing"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	logger.InitLogger()
}

// fakeGoalStore mimics the repository's atomic clamp-add in memory.
type fakeGoalStore struct {
	goals map[primitive.ObjectID]*models.Goal
}

func newFakeGoalStore(goals ...*models.Goal) *fakeGoalStore {
	s := &fakeGoalStore{goals: make(map[primitive.ObjectID]*models.Goal)}
	for _, g := range goals {
		if g.ID.IsZero() {
			g.ID = primitive.NewObjectID()
		}
		s.goals[g.ID] = g
	}
	return s
}

func (s *fakeGoalStore) GetActiveGoalsByAgent(_ context.Context, agentID primitive.ObjectID) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range s.goals {
		if g.AgentID == agentID && g.IsActive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeGoalStore) GetActiveGoals(_ context.Context) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range s.goals {
		if g.IsActive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeGoalStore) IncrementGoalProgress(_ context.Context, id primitive.ObjectID, delta float64) error {
	g := s.goals[id]
	g.CurrentValue += delta
	if g.CurrentValue < 0 {
		g.CurrentValue = 0
	}
	g.UpdatedAt = time.Now()
	return nil
}

func (s *fakeGoalStore) SetGoalProgress(_ context.Context, id primitive.ObjectID, value float64) error {
	g := s.goals[id]
	g.CurrentValue = value
	g.UpdatedAt = time.Now()
	return nil
}

// fakeSaleAggregator returns fixed totals regardless of window.
type fakeSaleAggregator struct {
	totals repository.SaleTotals
}

func (f *fakeSaleAggregator) AggregateSales(_ context.Context, _ primitive.ObjectID, _, _ *time.Time) (*repository.SaleTotals, error) {
	t := f.totals
	return &t, nil
}

type fakeClientCounter struct {
	count int64
}

func (f *fakeClientCounter) CountClients(_ context.Context, _ primitive.ObjectID, _, _ *time.Time) (int64, error) {
	return f.count, nil
}

func newGoal(agentID primitive.ObjectID, metricType string, target, current float64) *models.Goal {
	return &models.Goal{
		ID:           primitive.NewObjectID(),
		AgentID:      agentID,
		Title:        metricType + " goal",
		MetricType:   metricType,
		GoalType:     models.PeriodMonthly,
		TargetValue:  target,
		CurrentValue: current,
		IsActive:     true,
	}
}

func newSale(agentID primitive.ObjectID, premium, commission float64) *models.Sale {
	return &models.Sale{
		ID:               primitive.NewObjectID(),
		AgentID:          agentID,
		ClientID:         primitive.NewObjectID(),
		PolicyType:       "auto",
		PremiumAmount:    premium,
		CommissionAmount: commission,
		Status:           models.SaleStatusActive,
		SaleDate:         time.Now(),
	}
}

func TestApplySaleCreated(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 0)
	commission := newGoal(agent, models.MetricCommission, 100, 0)
	policies := newGoal(agent, models.MetricPoliciesSold, 10, 3)
	count := newGoal(agent, models.MetricSalesCount, 20, 5)
	clients := newGoal(agent, models.MetricClientCount, 50, 7)

	store := newFakeGoalStore(amount, commission, policies, count, clients)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	err := svc.ApplySaleCreated(context.Background(), agent, newSale(agent, 600, 60))
	require.NoError(t, err)

	assert.Equal(t, 600.0, store.goals[amount.ID].CurrentValue)
	assert.Equal(t, 60.0, store.goals[commission.ID].CurrentValue)
	assert.Equal(t, 4.0, store.goals[policies.ID].CurrentValue)
	assert.Equal(t, 6.0, store.goals[count.ID].CurrentValue)
	// Metric isolation: client-count goals are untouched by sale events.
	assert.Equal(t, 7.0, store.goals[clients.ID].CurrentValue)
}

func TestApplySaleCreatedIgnoresOtherAgents(t *testing.T) {
	agent := primitive.NewObjectID()
	other := primitive.NewObjectID()
	goal := newGoal(other, models.MetricSalesAmount, 1000, 0)

	store := newFakeGoalStore(goal)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	require.NoError(t, svc.ApplySaleCreated(context.Background(), agent, newSale(agent, 600, 60)))
	assert.Equal(t, 0.0, store.goals[goal.ID].CurrentValue)
}

func TestInactiveGoalsAreInert(t *testing.T) {
	agent := primitive.NewObjectID()
	goal := newGoal(agent, models.MetricSalesAmount, 1000, 100)
	goal.IsActive = false

	store := newFakeGoalStore(goal)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	sale := newSale(agent, 600, 60)
	require.NoError(t, svc.ApplySaleCreated(context.Background(), agent, sale))
	require.NoError(t, svc.ApplySaleUpdated(context.Background(), agent, sale, newSale(agent, 900, 90)))
	require.NoError(t, svc.ApplySaleDeleted(context.Background(), agent, sale))
	require.NoError(t, svc.ApplyClientCreated(context.Background(), agent))

	assert.Equal(t, 100.0, store.goals[goal.ID].CurrentValue)
}

func TestApplySaleUpdatedIsPureDelta(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 600)
	commission := newGoal(agent, models.MetricCommission, 100, 60)
	policies := newGoal(agent, models.MetricPoliciesSold, 10, 1)

	store := newFakeGoalStore(amount, commission, policies)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	oldSale := newSale(agent, 600, 60)
	updated := newSale(agent, 1200, 60)
	require.NoError(t, svc.ApplySaleUpdated(context.Background(), agent, oldSale, updated))

	assert.Equal(t, 1200.0, store.goals[amount.ID].CurrentValue)
	// Commission unchanged, so the commission goal must not move.
	assert.Equal(t, 60.0, store.goals[commission.ID].CurrentValue)
	// An edited sale still counts as one sale.
	assert.Equal(t, 1.0, store.goals[policies.ID].CurrentValue)
}

func TestApplySaleDeletedReversesCreation(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 250)
	commission := newGoal(agent, models.MetricCommission, 100, 25)
	policies := newGoal(agent, models.MetricPoliciesSold, 10, 2)

	store := newFakeGoalStore(amount, commission, policies)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	sale := newSale(agent, 600, 60)
	require.NoError(t, svc.ApplySaleCreated(context.Background(), agent, sale))
	require.NoError(t, svc.ApplySaleDeleted(context.Background(), agent, sale))

	// Create followed by delete returns every goal to its prior value.
	assert.Equal(t, 250.0, store.goals[amount.ID].CurrentValue)
	assert.Equal(t, 25.0, store.goals[commission.ID].CurrentValue)
	assert.Equal(t, 2.0, store.goals[policies.ID].CurrentValue)
}

func TestDeleteClampsAtZero(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 100)
	policies := newGoal(agent, models.MetricPoliciesSold, 10, 0)

	store := newFakeGoalStore(amount, policies)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	sale := newSale(agent, 600, 60)
	// More deletions than creations must floor at zero, never go negative.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.ApplySaleDeleted(context.Background(), agent, sale))
	}

	assert.Equal(t, 0.0, store.goals[amount.ID].CurrentValue)
	assert.Equal(t, 0.0, store.goals[policies.ID].CurrentValue)
}

func TestApplyClientCreated(t *testing.T) {
	agent := primitive.NewObjectID()
	clientCount := newGoal(agent, models.MetricClientCount, 50, 10)
	newClients := newGoal(agent, models.MetricNewClients, 5, 0)
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 300)

	store := newFakeGoalStore(clientCount, newClients, amount)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	require.NoError(t, svc.ApplyClientCreated(context.Background(), agent))

	assert.Equal(t, 11.0, store.goals[clientCount.ID].CurrentValue)
	assert.Equal(t, 1.0, store.goals[newClients.ID].CurrentValue)
	// Metric isolation: a sales-amount goal ignores client events.
	assert.Equal(t, 300.0, store.goals[amount.ID].CurrentValue)
}

func TestUnknownMetricTypeIsSkipped(t *testing.T) {
	agent := primitive.NewObjectID()
	goal := newGoal(agent, "retention_rate", 100, 40)

	store := newFakeGoalStore(goal)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})

	require.NoError(t, svc.ApplySaleCreated(context.Background(), agent, newSale(agent, 600, 60)))
	require.NoError(t, svc.RecalculateAll(context.Background(), &agent))

	assert.Equal(t, 40.0, store.goals[goal.ID].CurrentValue)
}

func TestRecalculateAllOverwrites(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 999)
	commission := newGoal(agent, models.MetricCommission, 100, 1)
	count := newGoal(agent, models.MetricSalesCount, 20, 0)
	clients := newGoal(agent, models.MetricClientCount, 50, 3)

	store := newFakeGoalStore(amount, commission, count, clients)
	sales := &fakeSaleAggregator{totals: repository.SaleTotals{PremiumSum: 4200, CommissionSum: 420, Count: 7}}
	svc := NewGoalProgressService(store, sales, &fakeClientCounter{count: 12})

	require.NoError(t, svc.RecalculateAll(context.Background(), &agent))

	assert.Equal(t, 4200.0, store.goals[amount.ID].CurrentValue)
	assert.Equal(t, 420.0, store.goals[commission.ID].CurrentValue)
	assert.Equal(t, 7.0, store.goals[count.ID].CurrentValue)
	assert.Equal(t, 12.0, store.goals[clients.ID].CurrentValue)
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	agent := primitive.NewObjectID()
	amount := newGoal(agent, models.MetricSalesAmount, 1000, 5)

	store := newFakeGoalStore(amount)
	sales := &fakeSaleAggregator{totals: repository.SaleTotals{PremiumSum: 750}}
	svc := NewGoalProgressService(store, sales, &fakeClientCounter{})

	require.NoError(t, svc.RecalculateAll(context.Background(), &agent))
	first := store.goals[amount.ID].CurrentValue
	require.NoError(t, svc.RecalculateAll(context.Background(), &agent))

	assert.Equal(t, first, store.goals[amount.ID].CurrentValue)
	assert.Equal(t, 750.0, first)
}

func TestScenarioSaleLifecycle(t *testing.T) {
	// One active sales_amount goal, target 1000: a 600 sale makes it active at
	// 60%, an update to 1200 flips it to completed at 120%, and deleting the
	// sale drops it back to zero.
	agent := primitive.NewObjectID()
	goal := newGoal(agent, models.MetricSalesAmount, 1000, 0)

	store := newFakeGoalStore(goal)
	svc := NewGoalProgressService(store, &fakeSaleAggregator{}, &fakeClientCounter{})
	now := time.Now()

	sale := newSale(agent, 600, 60)
	require.NoError(t, svc.ApplySaleCreated(context.Background(), agent, sale))
	assert.Equal(t, 600.0, store.goals[goal.ID].CurrentValue)
	assert.Equal(t, models.GoalStatusActive, store.goals[goal.ID].Status(now))

	updated := newSale(agent, 1200, 60)
	updated.ID = sale.ID
	require.NoError(t, svc.ApplySaleUpdated(context.Background(), agent, sale, updated))
	assert.Equal(t, 1200.0, store.goals[goal.ID].CurrentValue)
	assert.Equal(t, models.GoalStatusCompleted, store.goals[goal.ID].Status(now))

	require.NoError(t, svc.ApplySaleDeleted(context.Background(), agent, updated))
	assert.Equal(t, 0.0, store.goals[goal.ID].CurrentValue)
	assert.Equal(t, models.GoalStatusActive, store.goals[goal.ID].Status(now))
}
