package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/go-api/pkg/models"
)

func validAdjustment() Adjustment {
	return Adjustment{
		InventoryID: "inv-1",
		ProductID:   "prod-1",
		LocationID:  "loc-1",
		Quantity:    5,
		Reason:      models.AdjustReasonReceive,
	}
}

func TestValidate(t *testing.T) {
	a := validAdjustment()
	require.NoError(t, a.Validate())

	a = validAdjustment()
	a.Quantity = 0
	assert.ErrorIs(t, a.Validate(), ErrInvalidQuantity)

	a = validAdjustment()
	a.Quantity = -3
	assert.ErrorIs(t, a.Validate(), ErrInvalidQuantity)

	a = validAdjustment()
	a.InventoryID = ""
	assert.ErrorIs(t, a.Validate(), ErrMissingInventory)

	a = validAdjustment()
	a.LocationID = ""
	assert.ErrorIs(t, a.Validate(), ErrMissingLocation)

	a = validAdjustment()
	a.Reason = "shrinkage"
	assert.ErrorIs(t, a.Validate(), ErrUnknownReason)
}

func TestDeltaSign(t *testing.T) {
	cases := []struct {
		reason string
		want   int
	}{
		{models.AdjustReasonReceive, 5},
		{models.AdjustReasonDamage, -5},
		{models.AdjustReasonLoss, -5},
		{models.AdjustReasonCorrection, 5},
		{models.AdjustReasonTransfer, 5},
	}
	for _, tc := range cases {
		a := validAdjustment()
		a.Reason = tc.reason
		assert.Equal(t, tc.want, a.Delta(), "reason %s", tc.reason)
	}
}

func TestMovementType(t *testing.T) {
	assert.Equal(t, models.MovementTypePurchase, MovementType(models.AdjustReasonReceive))
	assert.Equal(t, models.MovementTypeDamage, MovementType(models.AdjustReasonDamage))
	assert.Equal(t, models.MovementTypeAdjustment, MovementType(models.AdjustReasonLoss))
	assert.Equal(t, models.MovementTypeAdjustment, MovementType(models.AdjustReasonCorrection))
	assert.Equal(t, models.MovementTypeTransfer, MovementType(models.AdjustReasonTransfer))
	assert.Equal(t, models.MovementTypeAdjustment, MovementType("anything-else"))
}

func TestMovement(t *testing.T) {
	a := validAdjustment()
	a.VariantID = "var-1"
	a.Reason = models.AdjustReasonDamage
	a.Notes = "dropped in the stockroom"
	a.PerformedBy = "staff-1"

	m := a.Movement()
	assert.Equal(t, "prod-1", m.ProductID)
	assert.Equal(t, "var-1", m.VariantID)
	assert.Equal(t, "loc-1", m.LocationID)
	assert.Equal(t, models.MovementTypeDamage, m.MovementType)
	assert.Equal(t, -5, m.Quantity)
	assert.Equal(t, "adjustment", m.ReferenceType)
	assert.Equal(t, "inv-1", m.ReferenceID)
	assert.Equal(t, "dropped in the stockroom", m.Notes)
	assert.Equal(t, "staff-1", m.PerformedBy)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestNewQuantity(t *testing.T) {
	a := validAdjustment()
	assert.Equal(t, 15, a.NewQuantity(10))

	a.Reason = models.AdjustReasonLoss
	assert.Equal(t, 5, a.NewQuantity(10))

	// The on-hand count can go negative when more is written off than the
	// record shows. The ledger keeps the true history either way.
	a.Quantity = 12
	assert.Equal(t, -2, a.NewQuantity(10))
}
