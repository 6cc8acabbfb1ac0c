// Package stock translates inventory-screen adjustments into stock
// movement records and new on-hand quantities.
package stock

import (
	"errors"
	"fmt"

	"github.com/dukapos/go-api/pkg/models"
)

var (
	ErrInvalidQuantity  = errors.New("adjustment quantity must be a positive whole number")
	ErrUnknownReason    = errors.New("unknown adjustment reason")
	ErrMissingLocation  = errors.New("adjustment requires a location")
	ErrMissingInventory = errors.New("adjustment requires an inventory record")
)

// Adjustment is one stock adjustment as entered on the inventory screen.
// Quantity is the magnitude typed by the user; the sign is derived from the
// reason code.
type Adjustment struct {
	InventoryID string `json:"inventory_id"`
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id"`
	LocationID  string `json:"location_id"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
	PerformedBy string `json:"performed_by"`
}

// Validate checks the adjustment before it is applied.
func (a *Adjustment) Validate() error {
	if a.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if a.InventoryID == "" {
		return ErrMissingInventory
	}
	if a.LocationID == "" {
		return ErrMissingLocation
	}
	switch a.Reason {
	case models.AdjustReasonReceive, models.AdjustReasonDamage, models.AdjustReasonLoss,
		models.AdjustReasonCorrection, models.AdjustReasonTransfer:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReason, a.Reason)
	}
}

// Delta is the signed quantity change. Damage and loss remove stock;
// every other reason adds it.
func (a *Adjustment) Delta() int {
	switch a.Reason {
	case models.AdjustReasonDamage, models.AdjustReasonLoss:
		return -a.Quantity
	default:
		return a.Quantity
	}
}

// Movement builds the audit-trail record for this adjustment.
func (a *Adjustment) Movement() models.StockMovement {
	m := models.StockMovement{
		ProductID:     a.ProductID,
		VariantID:     a.VariantID,
		LocationID:    a.LocationID,
		MovementType:  MovementType(a.Reason),
		Quantity:      a.Delta(),
		ReferenceType: "adjustment",
		ReferenceID:   a.InventoryID,
		Notes:         a.Notes,
		PerformedBy:   a.PerformedBy,
	}
	m.SetTimestamp()
	return m
}

// NewQuantity applies the signed delta to the current on-hand count.
func (a *Adjustment) NewQuantity(current int) int {
	return current + a.Delta()
}

// MovementType maps an adjustment reason to the movement type recorded in
// the audit trail. Unknown reasons fall back to a plain adjustment.
func MovementType(reason string) string {
	switch reason {
	case models.AdjustReasonReceive:
		return models.MovementTypePurchase
	case models.AdjustReasonDamage:
		return models.MovementTypeDamage
	case models.AdjustReasonLoss, models.AdjustReasonCorrection:
		return models.MovementTypeAdjustment
	case models.AdjustReasonTransfer:
		return models.MovementTypeTransfer
	default:
		return models.MovementTypeAdjustment
	}
}
