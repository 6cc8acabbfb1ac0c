package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/go-api/pkg/checkout"
	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/mongo"
)

type checkoutRequest struct {
	checkout.Request
	ManualDiscount *float64 `json:"manual_discount,omitempty"`
}

// Checkout runs the full checkout flow for a session's cart: optional
// manual discount, payment validation, order submission, cart clear.
func Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	if staffID, ok := c.Get("staff_id"); ok && req.StaffID == "" {
		req.StaffID, _ = staffID.(string)
	}

	orch := checkout.New(ct, mongo.OrderStore{}, global.GetLoyaltyDivisor())

	if req.ManualDiscount != nil {
		if err := orch.ApplyManualDiscount(*req.ManualDiscount); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid manual discount", []global.ValidationError{
				{Field: "manual_discount", Message: "Discount must be between zero and the cart subtotal", Code: "out_of_range"},
			}))
			return
		}
	}

	discountCode := ct.DiscountCode()

	result, err := orch.Checkout(c.Request.Context(), req.Request)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	if discountCode != "" && discountCode != "MANUAL" {
		if usageErr := mongo.IncrementDiscountUsage(discountCode); usageErr != nil {
			log.Printf("Warning: failed to increment discount usage for %s: %v", discountCode, usageErr)
		}
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(result))
}

func respondCheckoutError(c *gin.Context, err error) {
	var field, message, code string
	status := http.StatusBadRequest

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		field, message, code = "cart", "Cannot check out an empty cart", "empty_cart"
	case errors.Is(err, checkout.ErrNoPayments):
		field, message, code = "payments", "At least one payment is required", "no_payments"
	case errors.Is(err, checkout.ErrInvalidPayment):
		field, message, code = "payments", "Every payment amount must be greater than zero", "invalid_payment"
	case errors.Is(err, checkout.ErrInsufficientPayment):
		field, message, code = "payments", "Tendered amount is less than the order total", "insufficient_payment"
	case errors.Is(err, checkout.ErrDepositRequired):
		field, message, code = "payments", "A layaway deposit must be greater than zero", "deposit_required"
	case errors.Is(err, checkout.ErrLayawayCustomerRequired):
		field, message, code = "customer", "Layaway requires customer name and phone", "customer_required"
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		status = http.StatusConflict
		field, message, code = "checkout", "Another checkout is already in progress", "in_flight"
	default:
		log.Printf("Error creating order: %v", err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to record the order; the cart was not cleared", nil))
		return
	}

	c.JSON(status, global.ErrorResponse("Checkout rejected", []global.ValidationError{
		{Field: field, Message: message, Code: code},
	}))
}

// ApplyManualDiscount validates and applies a hand-entered order-level
// discount outside of checkout, so the cashier sees updated totals.
func ApplyManualDiscount(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	orch := checkout.New(ct, mongo.OrderStore{}, global.GetLoyaltyDivisor())
	if err := orch.ApplyManualDiscount(req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid manual discount", []global.ValidationError{
			{Field: "amount", Message: "Discount must be between zero and the cart subtotal", Code: "out_of_range"},
		}))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}
