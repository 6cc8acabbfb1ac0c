package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Order statuses. A layaway order transitions to completed once its payments
// reach the order total.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
	OrderStatusLayaway   = "layaway"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// BalanceTolerance absorbs float drift when deciding whether an order has
// been fully paid.
const BalanceTolerance = 0.01

// Order is a recorded sale. Item and pricing fields are snapshots taken at
// checkout, decoupled from later catalog edits.
type Order struct {
	ID             bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber    string        `json:"order_number" bson:"order_number" validate:"required"`
	CustomerID     string        `json:"customer_id" bson:"customer_id,omitempty"` // empty for walk-in sales
	LocationID     string        `json:"location_id" bson:"location_id" validate:"required"`
	Status         string        `json:"status" bson:"status" validate:"required,oneof=pending completed cancelled refunded layaway"`
	PaymentStatus  string        `json:"payment_status" bson:"payment_status"`
	Subtotal       float64       `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	DiscountAmount float64       `json:"discount_amount" bson:"discount_amount" validate:"gte=0"`
	TaxAmount      float64       `json:"tax_amount" bson:"tax_amount" validate:"gte=0"`
	TotalAmount    float64       `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	PaidAmount     float64       `json:"paid_amount" bson:"paid_amount"`
	ChangeAmount   float64       `json:"change_amount" bson:"change_amount"`
	DiscountCode   string        `json:"discount_code" bson:"discount_code,omitempty"`
	Notes          string        `json:"notes" bson:"notes,omitempty"`
	StaffID        string        `json:"staff_id" bson:"staff_id,omitempty"`

	LayawayCustomerName  string     `json:"layaway_customer_name" bson:"layaway_customer_name,omitempty"`
	LayawayCustomerPhone string     `json:"layaway_customer_phone" bson:"layaway_customer_phone,omitempty"`
	LayawayDueDate       *time.Time `json:"layaway_due_date" bson:"layaway_due_date,omitempty"`
	LayawayDepositPct    float64    `json:"layaway_deposit_percent" bson:"layaway_deposit_percent,omitempty"`

	CompletedAt *time.Time `json:"completed_at" bson:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// OrderItem is the per-line snapshot stored alongside an order.
type OrderItem struct {
	ID             bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID        bson.ObjectID `json:"order_id" bson:"order_id"`
	ProductID      string        `json:"product_id" bson:"product_id"`
	VariantID      string        `json:"variant_id" bson:"variant_id,omitempty"`
	ProductName    string        `json:"product_name" bson:"product_name"`
	VariantName    string        `json:"variant_name" bson:"variant_name,omitempty"`
	SKU            string        `json:"sku" bson:"sku"`
	Quantity       int           `json:"quantity" bson:"quantity" validate:"gte=1"`
	UnitPrice      float64       `json:"unit_price" bson:"unit_price"`
	CostPrice      float64       `json:"cost_price" bson:"cost_price"`
	DiscountAmount float64       `json:"discount_amount" bson:"discount_amount"`
	TaxAmount      float64       `json:"tax_amount" bson:"tax_amount"`
	TotalAmount    float64       `json:"total_amount" bson:"total_amount"`
}

// Payment is a recorded tender against an order. Layaway orders accumulate
// payments until the balance reaches zero.
type Payment struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID         bson.ObjectID `json:"order_id" bson:"order_id"`
	PaymentMethod   string        `json:"payment_method" bson:"payment_method"`
	Amount          float64       `json:"amount" bson:"amount" validate:"gt=0"`
	ReferenceNumber string        `json:"reference_number" bson:"reference_number,omitempty"`
	MpesaReceipt    string        `json:"mpesa_receipt" bson:"mpesa_receipt,omitempty"`
	MpesaPhone      string        `json:"mpesa_phone" bson:"mpesa_phone,omitempty"`
	Status          string        `json:"status" bson:"status"`
	ProcessedAt     *time.Time    `json:"processed_at" bson:"processed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
}

// Balance returns the amount still owed on the order, floored at zero.
func (o *Order) Balance() float64 {
	balance := o.TotalAmount - o.PaidAmount
	if balance < 0 {
		return 0
	}
	return balance
}

// CanAcceptPayment reports whether an installment fits the remaining
// balance, within float tolerance. Overpaying a layaway would inflate the
// proportional-revenue figures, so it is rejected.
func (o *Order) CanAcceptPayment(amount float64) bool {
	return amount <= o.Balance()+BalanceTolerance
}

// IsPaid reports whether payments cover the order total, within float
// tolerance.
func (o *Order) IsPaid() bool {
	return o.PaidAmount >= o.TotalAmount-BalanceTolerance
}

// IsOverdue reports whether a layaway order is past its due date.
func (o *Order) IsOverdue(now time.Time) bool {
	return o.Status == OrderStatusLayaway && o.LayawayDueDate != nil && o.LayawayDueDate.Before(now)
}

func (o *Order) SetTimestamps() {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

func GenerateOrderNumber() string {
	now := time.Now()
	// Format: ORD-YYYYMMDD-HHMMSS-RAND
	return fmt.Sprintf("ORD-%s-%03d",
		now.Format("20060102-150405"),
		now.Nanosecond()%1000,
	)
}

// CreateOrderRequest carries everything the persistence service needs to
// record a checkout: the item snapshots, computed totals, and the payment
// list.
type CreateOrderRequest struct {
	CustomerID   string         `json:"customer_id"`
	LocationID   string         `json:"location_id" validate:"required"`
	Items        []LineItem     `json:"items" validate:"required,min=1,dive"`
	Subtotal     float64        `json:"subtotal"`
	Discount     float64        `json:"discount"`
	TaxAmount    float64        `json:"tax_amount"`
	Total        float64        `json:"total"`
	ChangeAmount float64        `json:"change_amount"`
	Payments     []PaymentInput `json:"payments" validate:"required,min=1,dive"`
	Notes        string         `json:"notes"`
	DiscountCode string         `json:"discount_code"`
	StaffID      string         `json:"staff_id"`
	IsLayaway    bool           `json:"is_layaway"`
	Layaway      *LayawayData   `json:"layaway,omitempty"`
}

// CreateOrderResult is what the persistence service hands back once an order
// and its child records are durable.
type CreateOrderResult struct {
	Order      *Order      `json:"order"`
	OrderItems []OrderItem `json:"order_items"`
	Payments   []Payment   `json:"payments"`
}
