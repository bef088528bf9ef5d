package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAgent   = "agent"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User represents an agency employee account: an agent, a manager or an admin.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username       string              `bson:"username" json:"username"`
	Email          string              `bson:"email" json:"email"`
	HashedPassword string              `bson:"hashed_password" json:"-"`
	Role           string              `bson:"role" json:"role"` // "agent", "manager", "admin"
	ManagerID      *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
}
