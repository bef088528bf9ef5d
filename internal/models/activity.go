package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID   primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	Type      string             `bson:"type" json:"type"`           // e.g. "client_created", "sale_created", "goal_completed"
	TargetID  primitive.ObjectID `bson:"target_id" json:"target_id"` // the ID of the client, sale, goal, etc.
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Message   string             `bson:"message" json:"message"`
}
