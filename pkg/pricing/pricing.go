// Package pricing contains the cart pricing and totals engine: pure
// functions, no I/O, identical results for identical inputs. The same rules
// run under the cart, the checkout flow, and the analytics reports.
package pricing

import (
	"math"

	"github.com/dukapos/go-api/pkg/models"
)

// sanitize coerces NaN/Inf to 0 so a malformed numeric field can never poison
// a totals computation.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ItemTax computes the tax charged on a single line. The taxable base is the
// line subtotal less the item discount and this line's share of the
// order-level discount, floored at zero.
func ItemTax(unitPrice float64, quantity int, taxRate, itemDiscount, orderDiscountShare float64) float64 {
	unitPrice = sanitize(unitPrice)
	taxRate = sanitize(taxRate)
	itemDiscount = sanitize(itemDiscount)
	orderDiscountShare = sanitize(orderDiscountShare)

	taxable := unitPrice*float64(quantity) - itemDiscount - orderDiscountShare
	if taxable < 0 {
		taxable = 0
	}
	return taxable * taxRate / 100
}

// TotalTax sums per-line tax across the cart. Each line absorbs a pro-rata
// share of the order-level discount, proportional to its share of the
// subtotal. A zero subtotal contributes no share (and no division).
func TotalTax(items []models.LineItem, orderDiscount, subtotal float64) float64 {
	orderDiscount = sanitize(orderDiscount)
	subtotal = sanitize(subtotal)

	var total float64
	for i := range items {
		item := &items[i]
		var share float64
		if subtotal > 0 {
			share = (orderDiscount / subtotal) * item.Subtotal()
		}
		total += ItemTax(item.UnitPrice, item.Quantity, item.TaxRate, item.ItemDiscount, share)
	}
	return total
}

// Totals computes the full set of cart figures from the line items and the
// already-resolved order-level discount amount.
func Totals(items []models.LineItem, orderDiscountAmount float64) models.CartTotals {
	orderDiscountAmount = sanitize(orderDiscountAmount)

	var subtotal, itemDiscountTotal float64
	for i := range items {
		subtotal += items[i].Subtotal()
		itemDiscountTotal += sanitize(items[i].ItemDiscount)
	}

	totalDiscount := itemDiscountTotal + orderDiscountAmount
	taxAmount := TotalTax(items, orderDiscountAmount, subtotal)

	return models.CartTotals{
		Subtotal:          subtotal,
		ItemDiscountTotal: itemDiscountTotal,
		OrderDiscount:     orderDiscountAmount,
		TotalDiscount:     totalDiscount,
		TaxAmount:         taxAmount,
		Total:             subtotal - totalDiscount + taxAmount,
	}
}

// DiscountAmount resolves a discount definition against a subtotal:
// percentage of subtotal or a fixed amount, clamped to the optional cap and
// never exceeding the subtotal itself.
func DiscountAmount(subtotal float64, discountType string, value float64, maxCap *float64) float64 {
	subtotal = sanitize(subtotal)
	value = sanitize(value)

	var amount float64
	switch discountType {
	case models.DiscountTypePercentage:
		amount = subtotal * value / 100
	case models.DiscountTypeFixedAmount:
		amount = value
	}

	if maxCap != nil && amount > *maxCap {
		amount = *maxCap
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// DiscountFor is the nil-safe form of DiscountAmount for an optional applied
// discount.
func DiscountFor(d *models.Discount, subtotal float64) float64 {
	if d == nil {
		return 0
	}
	return DiscountAmount(subtotal, d.DiscountType, d.DiscountValue, d.MaxDiscountAmount)
}

// Change returns the cash handed back to the customer, floored at zero.
func Change(total, tendered float64) float64 {
	return math.Max(0, sanitize(tendered)-sanitize(total))
}

// LoyaltyPoints returns whole points earned for an order total, given how
// many currency units earn one point.
func LoyaltyPoints(totalAmount, perCurrency float64) int {
	perCurrency = sanitize(perCurrency)
	if perCurrency <= 0 {
		return 0
	}
	return int(math.Floor(sanitize(totalAmount) / perCurrency))
}

// LayawayLoyaltyPoints returns the proportional points for a partially paid
// layaway order.
func LayawayLoyaltyPoints(totalAmount, paidAmount, perCurrency float64) int {
	totalAmount = sanitize(totalAmount)
	if totalAmount <= 0 {
		return 0
	}
	ratio := sanitize(paidAmount) / totalAmount
	return int(math.Floor(float64(LoyaltyPoints(totalAmount, perCurrency)) * ratio))
}

// LayawayDeposit returns the deposit owed for a given percentage.
func LayawayDeposit(totalAmount, depositPercent float64) float64 {
	return sanitize(totalAmount) * sanitize(depositPercent) / 100
}

// DepositPercent is the inverse: what percentage of the total a tendered
// deposit represents.
func DepositPercent(totalAmount, tendered float64) float64 {
	totalAmount = sanitize(totalAmount)
	if totalAmount <= 0 {
		return 0
	}
	return sanitize(tendered) / totalAmount * 100
}

// LayawayBalance returns the amount still owed on a layaway order.
func LayawayBalance(totalAmount, paidAmount float64) float64 {
	return sanitize(totalAmount) - sanitize(paidAmount)
}

// LayawayProportionalRevenue attributes revenue to a layaway order in
// proportion to what has been paid so far.
func LayawayProportionalRevenue(totalAmount, paidAmount float64) float64 {
	totalAmount = sanitize(totalAmount)
	if totalAmount <= 0 {
		return 0
	}
	return totalAmount * (sanitize(paidAmount) / totalAmount)
}

// LayawayProportionalProfit attributes profit the same way, against the
// order's total cost.
func LayawayProportionalProfit(totalAmount, totalCost, paidAmount float64) float64 {
	totalAmount = sanitize(totalAmount)
	if totalAmount <= 0 {
		return 0
	}
	ratio := sanitize(paidAmount) / totalAmount
	return totalAmount*ratio - sanitize(totalCost)*ratio
}

// OrderProfit returns revenue less the summed cost of the line items.
func OrderProfit(totalAmount float64, items []models.LineItem) float64 {
	var totalCost float64
	for i := range items {
		totalCost += sanitize(items[i].CostPrice) * float64(items[i].Quantity)
	}
	return sanitize(totalAmount) - totalCost
}

// ProfitMargin returns margin as a percentage of revenue, 0 for zero revenue.
func ProfitMargin(revenue, cost float64) float64 {
	revenue = sanitize(revenue)
	if revenue == 0 {
		return 0
	}
	return (revenue - sanitize(cost)) / revenue * 100
}
