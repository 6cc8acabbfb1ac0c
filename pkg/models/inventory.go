package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Stock movement types recorded in the audit trail.
const (
	MovementTypeSale       = "sale"
	MovementTypePurchase   = "purchase"
	MovementTypeAdjustment = "adjustment"
	MovementTypeDamage     = "damage"
	MovementTypeReturn     = "return"
	MovementTypeTransfer   = "transfer"
)

// Adjustment reason codes accepted from the inventory screen.
const (
	AdjustReasonReceive    = "receive"
	AdjustReasonDamage     = "damage"
	AdjustReasonLoss       = "loss"
	AdjustReasonCorrection = "correction"
	AdjustReasonTransfer   = "transfer"
)

// Inventory is the on-hand record for one product or variant at one location.
type Inventory struct {
	ID               bson.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID        string        `json:"product_id" bson:"product_id,omitempty"` // empty when the row is for a variant
	VariantID        string        `json:"variant_id" bson:"variant_id,omitempty"`
	LocationID       string        `json:"location_id" bson:"location_id" validate:"required"`
	Quantity         int           `json:"quantity" bson:"quantity"`
	ReservedQuantity int           `json:"reserved_quantity" bson:"reserved_quantity"`
	ReorderPoint     int           `json:"reorder_point" bson:"reorder_point"`
	ReorderQuantity  int           `json:"reorder_quantity" bson:"reorder_quantity"`
	BinLocation      string        `json:"bin_location" bson:"bin_location,omitempty"`
	UpdatedAt        time.Time     `json:"updated_at" bson:"updated_at"`

	// Denormalized display fields populated on reads
	ProductName  string  `json:"product_name,omitempty" bson:"product_name,omitempty"`
	VariantName  string  `json:"variant_name,omitempty" bson:"variant_name,omitempty"`
	SKU          string  `json:"sku,omitempty" bson:"sku,omitempty"`
	Barcode      string  `json:"barcode,omitempty" bson:"barcode,omitempty"`
	SellingPrice float64 `json:"selling_price,omitempty" bson:"selling_price,omitempty"`
	CostPrice    float64 `json:"cost_price,omitempty" bson:"cost_price,omitempty"`
}

// IsLowStock reports whether available quantity has fallen to the reorder
// point.
func (inv *Inventory) IsLowStock() bool {
	return inv.Quantity-inv.ReservedQuantity <= inv.ReorderPoint
}

// StockMovement is one entry in the inventory audit trail. Quantity is
// signed: positive for stock in, negative for stock out.
type StockMovement struct {
	ID            bson.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID     string        `json:"product_id" bson:"product_id,omitempty"`
	VariantID     string        `json:"variant_id" bson:"variant_id,omitempty"`
	LocationID    string        `json:"location_id" bson:"location_id" validate:"required"`
	MovementType  string        `json:"movement_type" bson:"movement_type" validate:"required,oneof=sale purchase adjustment damage return transfer"`
	Quantity      int           `json:"quantity" bson:"quantity"`
	ReferenceType string        `json:"reference_type" bson:"reference_type,omitempty"`
	ReferenceID   string        `json:"reference_id" bson:"reference_id,omitempty"`
	Notes         string        `json:"notes" bson:"notes,omitempty"`
	PerformedBy   string        `json:"performed_by" bson:"performed_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

func (sm *StockMovement) SetTimestamp() {
	if sm.CreatedAt.IsZero() {
		sm.CreatedAt = time.Now()
	}
}
