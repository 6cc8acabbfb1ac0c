package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Discount types supported by the order-level discount engine.
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// Discount is an order-level discount definition, looked up by code and
// applied against the cart subtotal.
type Discount struct {
	ID                bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Code              string        `json:"code" bson:"code" validate:"required"`
	Name              string        `json:"name" bson:"name"`
	DiscountType      string        `json:"discount_type" bson:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue     float64       `json:"discount_value" bson:"discount_value" validate:"gte=0"`
	MinPurchaseAmount float64       `json:"min_purchase_amount" bson:"min_purchase_amount"`
	MaxDiscountAmount *float64      `json:"max_discount_amount" bson:"max_discount_amount,omitempty"`
	UsageLimit        *int          `json:"usage_limit" bson:"usage_limit,omitempty"`
	UsageCount        int           `json:"usage_count" bson:"usage_count"`
	StartDate         *time.Time    `json:"start_date" bson:"start_date,omitempty"`
	EndDate           *time.Time    `json:"end_date" bson:"end_date,omitempty"`
	IsActive          bool          `json:"is_active" bson:"is_active"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
}

// IsUsable reports whether the discount can currently be applied.
func (d *Discount) IsUsable(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return false
	}
	return true
}
