package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeGoalStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		current float64
		target  float64
		endDate *time.Time
		want    string
	}{
		{"target reached exactly", 1000, 1000, &future, GoalStatusCompleted},
		{"target exceeded", 1200, 1000, &future, GoalStatusCompleted},
		{"below target, end date in future", 600, 1000, &future, GoalStatusActive},
		{"below target, no end date", 600, 1000, nil, GoalStatusActive},
		{"below target, end date passed", 600, 1000, &past, GoalStatusOverdue},
		{"completed wins over overdue", 1000, 1000, &past, GoalStatusCompleted},
		{"zero progress", 0, 1000, &future, GoalStatusActive},
		{"zero target never completes", 0, 0, &future, GoalStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeGoalStatus(tt.current, tt.target, tt.endDate, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoalProgressPercent(t *testing.T) {
	g := &Goal{CurrentValue: 600, TargetValue: 1000}
	assert.InDelta(t, 60.0, g.ProgressPercent(), 0.0001)

	over := &Goal{CurrentValue: 1200, TargetValue: 1000}
	assert.InDelta(t, 120.0, over.ProgressPercent(), 0.0001)

	zero := &Goal{CurrentValue: 100, TargetValue: 0}
	assert.Equal(t, 0.0, zero.ProgressPercent())
}

func TestValidMetricType(t *testing.T) {
	for _, m := range []string{
		MetricSalesAmount, MetricCommission, MetricPoliciesSold,
		MetricSalesCount, MetricClientCount, MetricNewClients,
	} {
		assert.True(t, ValidMetricType(m), m)
	}
	assert.False(t, ValidMetricType("revenue"))
	assert.False(t, ValidMetricType(""))
}
