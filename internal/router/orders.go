package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/mongo"
)

// GetOrders lists orders, optionally filtered by status (?status=layaway).
func GetOrders(c *gin.Context) {
	orders, err := mongo.GetOrders(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch orders", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func GetOrderPayments(c *gin.Context) {
	orderID, err := bson.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order id", []global.ValidationError{
			{Field: "orderId", Message: "Order id must be a valid object id", Code: "invalid_id"},
		}))
		return
	}

	payments, err := mongo.GetOrderPayments(orderID)
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch payments", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(payments))
}

// AddOrderPayment records a layaway installment. When the payment
// settles the balance the order flips to completed.
func AddOrderPayment(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
		Method string  `json:"method" binding:"required,oneof=cash mpesa card bank_transfer credit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	orderID, err := bson.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order id", []global.ValidationError{
			{Field: "orderId", Message: "Order id must be a valid object id", Code: "invalid_id"},
		}))
		return
	}

	payment, err := mongo.AddOrderPayment(orderID, req.Amount, req.Method)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		if errors.Is(err, mongo.ErrPaymentExceedsBalance) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Payment exceeds balance", []global.ValidationError{
				{Field: "amount", Message: "Amount is more than the remaining balance on this order", Code: "exceeds_balance"},
			}))
			return
		}
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to record payment", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(payment))
}
