package models

import (
	"math"
	"time"
)

// UntrackedStock is the quantity cap used for line items whose product does
// not track inventory.
const UntrackedStock = 1 << 30

// LineItem is one product-or-variant entry in the cart. Pricing fields are
// snapshotted at add-time so later catalog edits do not affect an in-progress
// sale.
type LineItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	VariantID    string  `json:"variant_id,omitempty"` // empty for a bare product
	Name         string  `json:"name"`
	VariantName  string  `json:"variant_name,omitempty"`
	SKU          string  `json:"sku"`
	Barcode      string  `json:"barcode"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	CostPrice    float64 `json:"cost_price"`
	TaxRate      float64 `json:"tax_rate"`      // percentage, 0-100
	ItemDiscount float64 `json:"item_discount"` // monetary amount
	ImageURL     string  `json:"image_url,omitempty"`
	MaxQuantity  int     `json:"max_quantity"`
}

func (li *LineItem) IsVariant() bool {
	return li.VariantID != ""
}

// Subtotal is unit price times quantity, before any discount.
func (li *LineItem) Subtotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Total is the line subtotal less the item-level discount.
func (li *LineItem) Total() float64 {
	return li.Subtotal() - li.ItemDiscount
}

// Normalize coerces malformed numeric fields to safe values so that a
// partially constructed line item can never break totals computation.
func (li *LineItem) Normalize() {
	li.UnitPrice = sanitizeNonNegative(li.UnitPrice)
	li.CostPrice = sanitizeNonNegative(li.CostPrice)
	li.ItemDiscount = sanitizeNonNegative(li.ItemDiscount)
	li.TaxRate = sanitizeNonNegative(li.TaxRate)
	if li.TaxRate > 100 {
		li.TaxRate = 100
	}
	if li.Quantity < 1 {
		li.Quantity = 1
	}
	if li.MaxQuantity < 1 {
		li.MaxQuantity = UntrackedStock
	}
}

func sanitizeNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// CartTotals is fully derived from the line items and order-level discount;
// it is recomputed on every cart mutation and never stored independently of
// its inputs.
type CartTotals struct {
	Subtotal          float64 `json:"subtotal"`
	ItemDiscountTotal float64 `json:"item_discount_total"`
	OrderDiscount     float64 `json:"order_discount"`
	TotalDiscount     float64 `json:"total_discount"`
	TaxAmount         float64 `json:"tax_amount"`
	Total             float64 `json:"total"`
}

// Payment method tags accepted at the point of sale.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodMpesa        = "mpesa"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCredit       = "credit"
)

// PaymentInput is one tendered payment at checkout.
type PaymentInput struct {
	ID              string  `json:"id"`
	Method          string  `json:"method" validate:"required,oneof=cash mpesa card bank_transfer credit"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	MpesaReceipt    string  `json:"mpesa_receipt,omitempty"`
	MpesaPhone      string  `json:"mpesa_phone,omitempty"`
}

// LayawayData carries the customer contact details required when a sale is
// recorded with a partial deposit.
type LayawayData struct {
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	DepositPercent float64   `json:"deposit_percent"`
	DueDate        time.Time `json:"due_date"`
}
