package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/mongo"
	"github.com/dukapos/go-api/pkg/stock"
)

// GetInventory returns stock levels, optionally scoped to a location
// (?location=...) and filtered by a name/SKU query (?q=...).
func GetInventory(c *gin.Context) {
	items, err := mongo.GetInventory(c.Query("location"), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch inventory", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

// AdjustStock applies a manual stock adjustment and records the
// corresponding movement.
func AdjustStock(c *gin.Context) {
	var adj stock.Adjustment
	if err := c.ShouldBindJSON(&adj); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	if staffID, ok := c.Get("staff_id"); ok && adj.PerformedBy == "" {
		adj.PerformedBy, _ = staffID.(string)
	}

	if err := mongo.AdjustStock(&adj); err != nil {
		switch {
		case errors.Is(err, stock.ErrInvalidQuantity),
			errors.Is(err, stock.ErrUnknownReason),
			errors.Is(err, stock.ErrMissingLocation),
			errors.Is(err, stock.ErrMissingInventory):
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid adjustment", []global.ValidationError{
				{Field: "adjustment", Message: err.Error(), Code: "validation_error"},
			}))
		default:
			c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to adjust stock", nil))
		}
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"movement_type": stock.MovementType(adj.Reason),
		"delta":         adj.Delta(),
	}))
}

// GetStockMovements returns recent movement history for a product.
func GetStockMovements(c *gin.Context) {
	movements, err := mongo.GetStockMovements(c.Query("product"), int64(intQuery(c, "limit", 50)))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to fetch stock movements", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(movements))
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
