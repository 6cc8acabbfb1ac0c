package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Customer is a known repeat customer attached to sales for loyalty tracking.
type Customer struct {
	ID            bson.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName     string        `json:"first_name" bson:"first_name" validate:"required,min=1,max=100"`
	LastName      string        `json:"last_name" bson:"last_name" validate:"max=100"`
	Email         string        `json:"email" bson:"email,omitempty"`
	Phone         string        `json:"phone" bson:"phone,omitempty"`
	Notes         string        `json:"notes" bson:"notes,omitempty"`
	LoyaltyPoints int           `json:"loyalty_points" bson:"loyalty_points"`
	TotalSpent    float64       `json:"total_spent" bson:"total_spent"`
	TotalOrders   int           `json:"total_orders" bson:"total_orders"`
	IsActive      bool          `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

func (c *Customer) SetTimestamps() {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// Location is a store/branch a sale or stock record is attributed to.
type Location struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name" validate:"required"`
	Address   string        `json:"address" bson:"address,omitempty"`
	City      string        `json:"city" bson:"city,omitempty"`
	Country   string        `json:"country" bson:"country,omitempty"`
	Phone     string        `json:"phone" bson:"phone,omitempty"`
	IsActive  bool          `json:"is_active" bson:"is_active"`
	IsDefault bool          `json:"is_default" bson:"is_default"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// Staff is a till operator account. Passwords are stored bcrypt-hashed.
type Staff struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string        `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	Name         string        `json:"name" bson:"name"`
	Role         string        `json:"role" bson:"role" validate:"oneof=admin manager cashier"`
	IsActive     bool          `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
