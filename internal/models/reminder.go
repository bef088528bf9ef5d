package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reminder types.
const (
	ReminderTypeFollowUp = "follow_up"
	ReminderTypeRenewal  = "renewal"
	ReminderTypeBirthday = "birthday"
	ReminderTypeCustom   = "custom"
)

// Reminder is a dated to-do for an agent, optionally tied to a client.
type Reminder struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AgentID     primitive.ObjectID  `bson:"agent_id" json:"agent_id"`
	ClientID    *primitive.ObjectID `bson:"client_id,omitempty" json:"client_id,omitempty"`
	SaleID      *primitive.ObjectID `bson:"sale_id,omitempty" json:"sale_id,omitempty"` // set for auto-created renewal reminders
	Type        string              `bson:"type" json:"type"` // "follow_up", "renewal", "birthday", "custom"
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	DueDate     time.Time           `bson:"due_date" json:"due_date"`
	Completed   bool                `bson:"completed" json:"completed"`
	Notified    bool                `bson:"notified" json:"notified"` // set once the due-soon email went out
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
