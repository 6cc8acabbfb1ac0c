// Package checkout validates a payment set against the cart and submits the
// order-creation request. One validate-then-submit transaction per call; the
// cart is cleared only after the external call succeeds.
package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/go-api/pkg/cart"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/pricing"
)

// PaymentTolerance absorbs float drift when comparing tendered amounts to
// the cart total.
const PaymentTolerance = 0.01

// LayawayDueDays is how long a layaway customer has to pay the balance.
const LayawayDueDays = 30

var (
	ErrEmptyCart               = errors.New("checkout: cart is empty")
	ErrNoPayments              = errors.New("checkout: at least one payment is required")
	ErrInvalidPayment          = errors.New("checkout: payment amounts must be positive")
	ErrInsufficientPayment     = errors.New("checkout: tendered amount is less than total")
	ErrDepositRequired         = errors.New("checkout: layaway deposit must be greater than zero")
	ErrLayawayCustomerRequired = errors.New("checkout: layaway requires customer name and phone")
	ErrInvalidDiscount         = errors.New("checkout: discount must be between zero and the subtotal")
	ErrCheckoutInFlight        = errors.New("checkout: another checkout is already in progress")
)

// OrderCreator is the external persistence call that makes the sale durable.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResult, error)
}

// Request is one checkout attempt: the tendered payments and, for layaway,
// the customer contact details.
type Request struct {
	Payments      []models.PaymentInput `json:"payments"`
	IsLayaway     bool                  `json:"is_layaway"`
	CustomerName  string                `json:"customer_name,omitempty"`
	CustomerPhone string                `json:"customer_phone,omitempty"`
	StaffID       string                `json:"staff_id,omitempty"`
}

// Result reports the recorded order plus the display-only figures the till
// shows the cashier.
type Result struct {
	OrderID       string  `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	Change        float64 `json:"change"`
	AmountPaid    float64 `json:"amount_paid"`
	Balance       float64 `json:"balance"`
	LoyaltyPoints int     `json:"loyalty_points"`
}

// Orchestrator coordinates one cart's checkouts. The in-flight flag blocks
// re-submission while the external call is pending.
type Orchestrator struct {
	cart           *cart.Cart
	orders         OrderCreator
	loyaltyDivisor float64
	inFlight       atomic.Bool
}

func New(c *cart.Cart, orders OrderCreator, loyaltyDivisor float64) *Orchestrator {
	return &Orchestrator{
		cart:           c,
		orders:         orders,
		loyaltyDivisor: loyaltyDivisor,
	}
}

// ApplyManualDiscount validates a hand-entered order-level discount and
// applies it to the cart as a fixed amount.
func (o *Orchestrator) ApplyManualDiscount(amount float64) error {
	if amount < 0 || amount > o.cart.Totals().Subtotal {
		return ErrInvalidDiscount
	}
	o.cart.SetDiscountCode("MANUAL", &models.Discount{
		Code:          "MANUAL",
		Name:          "Manual discount",
		DiscountType:  models.DiscountTypeFixedAmount,
		DiscountValue: amount,
		IsActive:      true,
	})
	return nil
}

// Checkout validates the payment set, submits the order-creation request,
// and clears the cart on success. Validation failures and external-call
// failures both leave the cart untouched.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer o.inFlight.Store(false)

	if o.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if len(req.Payments) == 0 {
		return nil, ErrNoPayments
	}

	totals := o.cart.Totals()
	tendered := sumPayments(req.Payments)

	var layaway *models.LayawayData
	if req.IsLayaway {
		if tendered <= 0 {
			return nil, ErrDepositRequired
		}
		if o.cart.CustomerID() == "" && (req.CustomerName == "" || req.CustomerPhone == "") {
			return nil, ErrLayawayCustomerRequired
		}
		layaway = &models.LayawayData{
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			DepositPercent: pricing.DepositPercent(totals.Total, tendered),
			DueDate:        time.Now().AddDate(0, 0, LayawayDueDays),
		}
	} else if tendered < totals.Total-PaymentTolerance {
		return nil, ErrInsufficientPayment
	}

	// a negative line can make the sum look sufficient, so each payment is
	// checked on its own
	for i := range req.Payments {
		if req.Payments[i].Amount <= 0 {
			return nil, ErrInvalidPayment
		}
	}

	payments := o.recordedPayments(req, totals.Total, tendered)

	var change float64
	if !req.IsLayaway {
		change = pricing.Change(totals.Total, tendered)
	}

	orderReq := &models.CreateOrderRequest{
		CustomerID:   o.cart.CustomerID(),
		LocationID:   o.cart.LocationID(),
		Items:        o.cart.Items(),
		Subtotal:     totals.Subtotal,
		Discount:     totals.TotalDiscount,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		ChangeAmount: change,
		Payments:     payments,
		Notes:        o.cart.Notes(),
		DiscountCode: o.cart.DiscountCode(),
		StaffID:      req.StaffID,
		IsLayaway:    req.IsLayaway,
		Layaway:      layaway,
	}

	result, err := o.orders.CreateOrder(ctx, orderReq)
	if err != nil {
		// the cart is left as-is for a retry
		return nil, err
	}

	res := &Result{
		OrderID:     result.Order.ID.Hex(),
		OrderNumber: result.Order.OrderNumber,
		AmountPaid:  tendered,
	}
	if req.IsLayaway {
		res.Balance = pricing.LayawayBalance(totals.Total, tendered)
		res.LoyaltyPoints = pricing.LayawayLoyaltyPoints(totals.Total, tendered, o.loyaltyDivisor)
	} else {
		res.Change = change
		res.LoyaltyPoints = pricing.LoyaltyPoints(totals.Total, o.loyaltyDivisor)
	}

	o.cart.Clear()
	return res, nil
}

// recordedPayments converts tendered inputs to the amounts actually stored.
// For a completed sale the cash line absorbs the overpayment: change is a
// display figure, so the recorded cash amount is reduced until the payment
// set sums to the order total.
func (o *Orchestrator) recordedPayments(req Request, total, tendered float64) []models.PaymentInput {
	payments := make([]models.PaymentInput, len(req.Payments))
	copy(payments, req.Payments)

	for i := range payments {
		if payments[i].ID == "" {
			payments[i].ID = "pay_" + uuid.NewString()
		}
	}

	if req.IsLayaway {
		return payments
	}

	overpaid := tendered - total
	if overpaid <= 0 {
		return payments
	}
	for i := range payments {
		if payments[i].Method != models.PaymentMethodCash {
			continue
		}
		recorded := payments[i].Amount - overpaid
		if recorded < 0 {
			recorded = 0
		}
		overpaid -= payments[i].Amount - recorded
		payments[i].Amount = recorded
		if overpaid <= 0 {
			break
		}
	}
	return payments
}

func sumPayments(payments []models.PaymentInput) float64 {
	var sum float64
	for i := range payments {
		sum += payments[i].Amount
	}
	return sum
}
