package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale statuses.
const (
	SaleStatusPending   = "pending"
	SaleStatusActive    = "active"
	SaleStatusCancelled = "cancelled"
)

// Sale is a sold policy attributed to an agent. Premium and commission
// amounts feed the goal progress ledger.
type Sale struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID          primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	ClientID         primitive.ObjectID `bson:"client_id" json:"client_id"`
	PolicyType       string             `bson:"policy_type" json:"policy_type"` // e.g. "auto", "home", "life", "health"
	PolicyNumber     string             `bson:"policy_number,omitempty" json:"policy_number,omitempty"`
	PremiumAmount    float64            `bson:"premium_amount" json:"premium_amount"`
	CommissionAmount float64            `bson:"commission_amount" json:"commission_amount"`
	Status           string             `bson:"status" json:"status"` // "pending", "active", "cancelled"
	SaleDate         time.Time          `bson:"sale_date" json:"sale_date"`
	RenewalDate      *time.Time         `bson:"renewal_date,omitempty" json:"renewal_date,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
