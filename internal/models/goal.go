package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metric types a goal can track. The metric decides which sale/client
// events move the goal's current value.
const (
	MetricSalesAmount  = "sales_amount"
	MetricCommission   = "commission"
	MetricPoliciesSold = "policies_sold"
	MetricSalesCount   = "sales_count"
	MetricClientCount  = "client_count"
	MetricNewClients   = "new_clients"
)

// Goal periods, informational only (display grouping).
const (
	PeriodWeekly     = "weekly"
	PeriodMonthly    = "monthly"
	PeriodQuarterly  = "quarterly"
	PeriodHalfYearly = "half_yearly"
	PeriodAnnual     = "annual"
)

// Derived goal statuses.
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusOverdue   = "overdue"
)

// Goal is a performance target an agent tracks over a period. CurrentValue
// is maintained by the progress ledger, never edited directly.
type Goal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID      primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	Title        string             `bson:"title" json:"title"`
	MetricType   string             `bson:"metric_type" json:"metric_type"`
	GoalType     string             `bson:"goal_type" json:"goal_type"` // weekly, monthly, quarterly, half_yearly, annual
	TargetValue  float64            `bson:"target_value" json:"target_value"`
	CurrentValue float64            `bson:"current_value" json:"current_value"`
	StartDate    *time.Time         `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate      *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidMetricType reports whether s is one of the known metric types.
func ValidMetricType(s string) bool {
	switch s {
	case MetricSalesAmount, MetricCommission, MetricPoliciesSold,
		MetricSalesCount, MetricClientCount, MetricNewClients:
		return true
	}
	return false
}

// ComputeGoalStatus derives a goal's status from its numbers and end date.
// Completion wins over overdue: a goal that hit its target after the end
// date is still completed. Over-achievement past 100% stays completed.
func ComputeGoalStatus(currentValue, targetValue float64, endDate *time.Time, now time.Time) string {
	if targetValue > 0 && currentValue/targetValue >= 1 {
		return GoalStatusCompleted
	}
	if endDate != nil && endDate.Before(now) {
		return GoalStatusOverdue
	}
	return GoalStatusActive
}

// ProgressPercent returns the goal's completion ratio as a percentage.
// Values above 100 are reported as-is so over-achievement is visible.
func (g *Goal) ProgressPercent() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	return g.CurrentValue / g.TargetValue * 100
}

// Status derives the goal's status at the given time.
func (g *Goal) Status(now time.Time) string {
	return ComputeGoalStatus(g.CurrentValue, g.TargetValue, g.EndDate, now)
}
