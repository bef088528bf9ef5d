package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client statuses.
const (
	ClientStatusLead     = "lead"
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is one record in an agent's book of business.
type Client struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID     primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	LastName    string             `bson:"last_name" json:"last_name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Status      string             `bson:"status" json:"status"` // "lead", "active", "inactive"
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display and CSV export.
func (c *Client) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
