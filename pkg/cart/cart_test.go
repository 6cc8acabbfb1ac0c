package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/pricing"
)

// memStore implements Store for testing
type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(key string) (string, error) {
	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *memStore) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(key string) error {
	delete(m.data, key)
	return nil
}

// fakeSaleable implements models.Saleable for testing
type fakeSaleable struct {
	id       string
	parentID string
	name     string
	price    float64
	cost     float64
	taxRate  float64
}

func (f fakeSaleable) SaleableID() string      { return f.id }
func (f fakeSaleable) ParentProductID() string { return f.parentID }
func (f fakeSaleable) DisplayName() string     { return f.name }
func (f fakeSaleable) SaleSKU() string         { return "SKU-" + f.id }
func (f fakeSaleable) SaleBarcode() string     { return "123" + f.id }
func (f fakeSaleable) UnitPrice() float64      { return f.price }
func (f fakeSaleable) UnitCost() float64       { return f.cost }
func (f fakeSaleable) SaleTaxRate() float64    { return f.taxRate }
func (f fakeSaleable) SaleImageURL() string    { return "" }

var (
	soda      = fakeSaleable{id: "p1", name: "Soda", price: 100, cost: 60, taxRate: 16}
	sodaLarge = fakeSaleable{id: "v1", parentID: "p1", name: "Soda / Large", price: 150, cost: 90, taxRate: 16}
)

func newTestCart() (*Cart, *memStore) {
	store := newMemStore()
	return New(store, "loc-main"), store
}

func TestAddItem_SnapshotsPricing(t *testing.T) {
	c, _ := newTestCart()

	require.NoError(t, c.AddItem(soda, 2, 10))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Empty(t, items[0].VariantID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].UnitPrice)
	assert.Equal(t, 60.0, items[0].CostPrice)
	assert.Equal(t, 16.0, items[0].TaxRate)
	assert.Equal(t, 10, items[0].MaxQuantity)
	assert.NotEmpty(t, items[0].ID)
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	c, _ := newTestCart()

	require.NoError(t, c.AddItem(soda, 1, 10))
	require.NoError(t, c.AddItem(soda, 2, 10))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddItem_ProductAndVariantAreDistinctLines(t *testing.T) {
	c, _ := newTestCart()

	require.NoError(t, c.AddItem(soda, 1, 10))
	require.NoError(t, c.AddItem(sodaLarge, 1, 10))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Empty(t, items[0].VariantID)
	assert.Equal(t, "v1", items[1].VariantID)
	assert.Equal(t, "p1", items[1].ProductID)
	assert.Equal(t, "Soda / Large", items[1].VariantName)
}

func TestAddItem_StockLimitIsTypedError(t *testing.T) {
	c, _ := newTestCart()

	require.NoError(t, c.AddItem(soda, 3, 3))
	err := c.AddItem(soda, 1, 3)

	assert.ErrorIs(t, err, ErrStockLimit)
	// rejected add leaves the cart unchanged
	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestAddItem_UntrackedInventoryGetsSentinelCap(t *testing.T) {
	c, _ := newTestCart()

	require.NoError(t, c.AddItem(soda, 500, 0))
	assert.Equal(t, models.UntrackedStock, c.Items()[0].MaxQuantity)
}

func TestUpdateQuantity_Bounds(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.AddItem(soda, 2, 5))
	id := c.Items()[0].ID

	// over the cap: rejected, quantity unchanged
	assert.ErrorIs(t, c.UpdateQuantity(id, 6), ErrStockLimit)
	assert.Equal(t, 2, c.Items()[0].Quantity)

	// within the cap
	require.NoError(t, c.UpdateQuantity(id, 5))
	assert.Equal(t, 5, c.Items()[0].Quantity)

	// below 1 removes the line
	require.NoError(t, c.UpdateQuantity(id, 0))
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	c, _ := newTestCart()
	assert.ErrorIs(t, c.UpdateQuantity("missing", 1), ErrItemNotFound)
}

func TestRemoveItem_RecomputesTotals(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.AddItem(soda, 1, 10))
	require.NoError(t, c.AddItem(sodaLarge, 1, 10))
	id := c.Items()[0].ID

	require.NoError(t, c.RemoveItem(id))

	require.Len(t, c.Items(), 1)
	assert.InDelta(t, 150, c.Totals().Subtotal, 1e-9)
}

func TestApplyItemDiscount_ClampedToLineSubtotal(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.AddItem(soda, 2, 10)) // line subtotal 200
	id := c.Items()[0].ID

	require.NoError(t, c.ApplyItemDiscount(id, 500))
	assert.Equal(t, 200.0, c.Items()[0].ItemDiscount)

	require.NoError(t, c.ApplyItemDiscount(id, -10))
	assert.Equal(t, 0.0, c.Items()[0].ItemDiscount)
}

func TestSetDiscountCode_AppliesAgainstCurrentSubtotal(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.AddItem(soda, 4, 10)) // subtotal 400

	discount := &models.Discount{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
	c.SetDiscountCode("SAVE10", discount)

	assert.Equal(t, "SAVE10", c.DiscountCode())
	assert.InDelta(t, 40, c.Totals().OrderDiscount, 1e-9)

	c.SetDiscountCode("", nil)
	assert.Empty(t, c.DiscountCode())
	assert.Equal(t, 0.0, c.Totals().OrderDiscount)
}

func TestTotalsNeverStale(t *testing.T) {
	c, _ := newTestCart()
	discount := &models.Discount{
		Code:          "FLAT50",
		DiscountType:  models.DiscountTypeFixedAmount,
		DiscountValue: 50,
		IsActive:      true,
	}

	require.NoError(t, c.AddItem(soda, 2, 20))
	c.SetDiscountCode("FLAT50", discount)
	require.NoError(t, c.AddItem(sodaLarge, 1, 20))
	require.NoError(t, c.ApplyItemDiscount(c.Items()[0].ID, 30))
	require.NoError(t, c.UpdateQuantity(c.Items()[1].ID, 2))

	// the invariant: exposed totals always equal a fresh computation over the
	// current items and applied discount
	items := c.Items()
	var subtotal float64
	for i := range items {
		subtotal += items[i].Subtotal()
	}
	expected := pricing.Totals(items, pricing.DiscountFor(c.AppliedDiscount(), subtotal))
	assert.Equal(t, expected, c.Totals())
}

func TestClear_ResetsStateAndStore(t *testing.T) {
	c, store := newTestCart()
	require.NoError(t, c.AddItem(soda, 1, 10))
	c.SetCustomer("cust-1")
	c.SetNotes("gift wrap")

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.CustomerID())
	assert.Empty(t, c.Notes())
	assert.Equal(t, models.CartTotals{}, c.Totals())
	assert.Empty(t, store.data)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newMemStore()
	c := New(store, "loc-main")

	require.NoError(t, c.AddItem(soda, 2, 10))
	require.NoError(t, c.ApplyItemDiscount(c.Items()[0].ID, 20))
	c.SetCustomer("cust-9")
	c.SetLocation("loc-branch")
	c.SetNotes("deliver monday")
	c.SetDiscountCode("SAVE10", &models.Discount{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	})
	savedTotals := c.Totals()

	restored := New(store, "loc-main")
	restored.Load()

	assert.Equal(t, c.Items(), restored.Items())
	assert.Equal(t, "cust-9", restored.CustomerID())
	assert.Equal(t, "loc-branch", restored.LocationID())
	assert.Equal(t, "deliver monday", restored.Notes())
	assert.Equal(t, "SAVE10", restored.DiscountCode())
	require.NotNil(t, restored.AppliedDiscount())
	assert.Equal(t, savedTotals, restored.Totals())
}

func TestLoad_EmptyStoreStaysEmpty(t *testing.T) {
	c, _ := newTestCart()
	c.Load()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, "loc-main", c.LocationID())
	assert.Equal(t, models.CartTotals{}, c.Totals())
}

func TestItemCount(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.AddItem(soda, 2, 10))
	require.NoError(t, c.AddItem(sodaLarge, 3, 10))
	assert.Equal(t, 5, c.ItemCount())
}
