package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/go-api/pkg/ai"
	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/mongo"
)

func salesPeriod(c *gin.Context) string {
	switch period := c.DefaultQuery("period", "today"); period {
	case "today", "week", "month":
		return period
	default:
		return "today"
	}
}

func GetSalesMetrics(c *gin.Context) {
	metrics, err := mongo.GetSalesMetrics(c.Query("location"), salesPeriod(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to compute sales metrics", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(metrics))
}

func GetSalesTrend(c *gin.Context) {
	trend, err := mongo.GetSalesTrend(c.Query("location"), intQuery(c, "days", 7))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to compute sales trend", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(trend))
}

func GetInventoryMetrics(c *gin.Context) {
	metrics, err := mongo.GetInventoryMetrics(c.Query("location"))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to compute inventory metrics", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(metrics))
}

func GetTopProducts(c *gin.Context) {
	products, err := mongo.GetTopProducts(intQuery(c, "days", 30), intQuery(c, "limit", 10))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to compute top products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func GenerateAISalesReport(c *gin.Context) {
	report, err := ai.GenerateSalesReport(c.Request.Context(), c.Query("location"), salesPeriod(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to generate sales report", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(report))
}

func GenerateAIInventoryReport(c *gin.Context) {
	report, err := ai.GenerateInventoryReport(c.Request.Context(), c.Query("location"))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to generate inventory report", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(report))
}

func GenerateAIProductAnalysis(c *gin.Context) {
	report, err := ai.GenerateTopProductsAnalysis(c.Request.Context(), intQuery(c, "days", 30), intQuery(c, "limit", 10))
	if err != nil {
		c.JSON(http.StatusBadGateway, global.ErrorResponse("Failed to generate product analysis", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(report))
}
