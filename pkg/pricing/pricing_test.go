package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/go-api/pkg/models"
)

func item(price float64, qty int, taxRate, discount float64) models.LineItem {
	return models.LineItem{
		ID:           "itm",
		ProductID:    "prd",
		Quantity:     qty,
		UnitPrice:    price,
		TaxRate:      taxRate,
		ItemDiscount: discount,
		MaxQuantity:  models.UntrackedStock,
	}
}

func TestItemTax_DiscountBeforeTax(t *testing.T) {
	// 100 x 2 at 16%, item discount 20: taxable 180, tax 28.8
	tax := ItemTax(100, 2, 16, 20, 0)
	assert.InDelta(t, 28.8, tax, 1e-9)
}

func TestItemTax_TaxableFlooredAtZero(t *testing.T) {
	tax := ItemTax(10, 1, 16, 50, 0)
	assert.Equal(t, 0.0, tax)
}

func TestItemTax_MalformedInputsCoerceToZero(t *testing.T) {
	tax := ItemTax(math.NaN(), 2, 16, math.Inf(1), 0)
	assert.False(t, math.IsNaN(tax))
	assert.Equal(t, 0.0, tax)
}

func TestTotalTax_ProRataShares(t *testing.T) {
	// Two lines with subtotals 100 and 300, order discount 40:
	// shares are 10 and 30, so taxable bases are 90 and 270.
	items := []models.LineItem{
		item(100, 1, 10, 0),
		item(300, 1, 10, 0),
	}
	tax := TotalTax(items, 40, 400)
	assert.InDelta(t, 9.0+27.0, tax, 1e-9)
}

func TestTotalTax_ZeroSubtotalIsSafe(t *testing.T) {
	tax := TotalTax([]models.LineItem{}, 100, 0)
	assert.Equal(t, 0.0, tax)
	assert.False(t, math.IsNaN(tax))
}

func TestTotals_SingleLineScenario(t *testing.T) {
	// unit price 100, qty 2, 16% tax, item discount 20, no order discount:
	// taxable 180, tax 28.8, cart total 208.8
	items := []models.LineItem{item(100, 2, 16, 20)}
	totals := Totals(items, 0)

	assert.InDelta(t, 200, totals.Subtotal, 1e-9)
	assert.InDelta(t, 20, totals.ItemDiscountTotal, 1e-9)
	assert.InDelta(t, 20, totals.TotalDiscount, 1e-9)
	assert.InDelta(t, 28.8, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 208.8, totals.Total, 1e-9)
}

func TestTotals_Consistency(t *testing.T) {
	cases := []struct {
		name          string
		items         []models.LineItem
		orderDiscount float64
	}{
		{"empty cart", nil, 0},
		{"empty cart with discount", nil, 50},
		{"single line", []models.LineItem{item(49.99, 3, 16, 5)}, 0},
		{"mixed rates", []models.LineItem{item(100, 1, 16, 0), item(300, 2, 8, 30)}, 40},
		{"fully discounted", []models.LineItem{item(10, 1, 16, 10)}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := Totals(tc.items, tc.orderDiscount)
			// total == subtotal - totalDiscount + taxAmount, exactly
			assert.Equal(t, totals.Subtotal-totals.TotalDiscount+totals.TaxAmount, totals.Total)
			assert.Equal(t, totals.ItemDiscountTotal+totals.OrderDiscount, totals.TotalDiscount)
			assert.GreaterOrEqual(t, totals.TaxAmount, 0.0)
		})
	}
}

func TestTotals_Idempotent(t *testing.T) {
	items := []models.LineItem{item(33.33, 3, 16, 7.5), item(120, 2, 8, 0)}
	first := Totals(items, 25)
	second := Totals(items, 25)
	// bit-identical, not just approximately equal
	require.Equal(t, first, second)
}

func TestDiscountAmount_Percentage(t *testing.T) {
	assert.InDelta(t, 40, DiscountAmount(400, models.DiscountTypePercentage, 10, nil), 1e-9)
}

func TestDiscountAmount_CappedAtMaxAndSubtotal(t *testing.T) {
	cap := 25.0
	cases := []struct {
		subtotal float64
		value    float64
		maxCap   *float64
		want     float64
	}{
		{100, 50, &cap, 25},  // capped by max
		{100, 10, &cap, 10},  // value below cap
		{20, 50, nil, 20},    // capped by subtotal
		{20, 50, &cap, 20},   // subtotal tighter than cap
		{100, -10, nil, 0},   // negative value floors at 0
		{0, 50, nil, 0},      // empty cart
	}

	for _, tc := range cases {
		got := DiscountAmount(tc.subtotal, models.DiscountTypeFixedAmount, tc.value, tc.maxCap)
		assert.InDelta(t, tc.want, got, 1e-9)
		assert.LessOrEqual(t, got, tc.subtotal)
		if tc.maxCap != nil {
			assert.LessOrEqual(t, got, *tc.maxCap)
		}
	}
}

func TestDiscountFor_NilDiscount(t *testing.T) {
	assert.Equal(t, 0.0, DiscountFor(nil, 500))
}

func TestChange(t *testing.T) {
	assert.Equal(t, 0.0, Change(500, 500))
	assert.InDelta(t, 100, Change(400, 500), 1e-9)
	assert.Equal(t, 0.0, Change(500, 400)) // never negative
}

func TestLayawayArithmetic(t *testing.T) {
	// total 1000, deposit 200: 20% deposit, balance 800
	assert.InDelta(t, 20, DepositPercent(1000, 200), 1e-9)
	assert.InDelta(t, 800, LayawayBalance(1000, 200), 1e-9)
	assert.InDelta(t, 200, LayawayDeposit(1000, 20), 1e-9)
	assert.InDelta(t, 200, LayawayProportionalRevenue(1000, 200), 1e-9)
	// cost 600: proportional profit = (1000-600) * 0.2
	assert.InDelta(t, 80, LayawayProportionalProfit(1000, 600, 200), 1e-9)
}

func TestLayawayArithmetic_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, DepositPercent(0, 200))
	assert.Equal(t, 0.0, LayawayProportionalRevenue(0, 200))
	assert.Equal(t, 0.0, LayawayProportionalProfit(0, 0, 200))
	assert.Equal(t, 0, LayawayLoyaltyPoints(0, 200, 100))
}

func TestLoyaltyPoints(t *testing.T) {
	assert.Equal(t, 10, LoyaltyPoints(1050, 100))
	assert.Equal(t, 0, LoyaltyPoints(1050, 0)) // disabled divisor
	// layaway: 20% paid of 1000 -> 20% of 10 points
	assert.Equal(t, 2, LayawayLoyaltyPoints(1000, 200, 100))
}

func TestOrderProfit(t *testing.T) {
	items := []models.LineItem{
		{Quantity: 2, CostPrice: 60},
		{Quantity: 1, CostPrice: 30},
	}
	assert.InDelta(t, 208.8-150, OrderProfit(208.8, items), 1e-9)
}

func TestProfitMargin(t *testing.T) {
	assert.InDelta(t, 25, ProfitMargin(200, 150), 1e-9)
	assert.Equal(t, 0.0, ProfitMargin(0, 150))
}
