package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukapos/go-api/pkg/mongo"
)

// AIReportResponse represents the structure of AI-generated reports
type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

func errorReport(message string, err error) *AIReportResponse {
	return &AIReportResponse{
		Status:      "error",
		Data:        ReportData{Error: message + ": " + err.Error()},
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
	}
}

func buildReport(ctx context.Context, rawData interface{}, systemPrompt, userPrompt, subject string) *AIReportResponse {
	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
		Data: ReportData{
			RawData: rawData,
			Summary: subject + " data retrieved successfully",
		},
	}

	if !IsEnabled() {
		response.Data.Summary = "Raw " + subject + " data (AI insights unavailable)"
		return response
	}

	aiInsights, err := generateCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		response.Data.Error = "AI analysis failed: " + err.Error()
		return response
	}
	response.Data.AIInsights = aiInsights
	response.Data.Summary = "AI-generated " + subject + " insights and recommendations"
	return response
}

// GenerateSalesReport combines period metrics and the daily trend into one
// AI-analyzed sales report.
func GenerateSalesReport(ctx context.Context, locationID, period string) (*AIReportResponse, error) {
	metrics, err := mongo.GetSalesMetrics(locationID, period)
	if err != nil {
		return errorReport("Failed to fetch sales data", err), err
	}

	trendDays := 7
	if period == "month" {
		trendDays = 30
	}
	trend, err := mongo.GetSalesTrend(locationID, trendDays)
	if err != nil {
		return errorReport("Failed to fetch sales trend", err), err
	}

	rawData := map[string]interface{}{
		"metrics": metrics,
		"trend":   trend,
	}
	return buildReport(ctx, rawData, SalesReportSystemPrompt, formatSalesDataPrompt(rawData), "sales"), nil
}

// GenerateInventoryReport analyzes current stock levels and value.
func GenerateInventoryReport(ctx context.Context, locationID string) (*AIReportResponse, error) {
	metrics, err := mongo.GetInventoryMetrics(locationID)
	if err != nil {
		return errorReport("Failed to fetch inventory data", err), err
	}

	items, err := mongo.GetInventory(locationID, "")
	if err != nil {
		return errorReport("Failed to fetch inventory items", err), err
	}

	rawData := map[string]interface{}{
		"metrics": metrics,
		"items":   items,
	}
	return buildReport(ctx, rawData, InventoryReportSystemPrompt, formatInventoryDataPrompt(rawData), "inventory"), nil
}

// GenerateTopProductsAnalysis analyzes the best sellers over the last N days.
func GenerateTopProductsAnalysis(ctx context.Context, days, limit int) (*AIReportResponse, error) {
	topProducts, err := mongo.GetTopProducts(days, limit)
	if err != nil {
		return errorReport("Failed to fetch top products data", err), err
	}

	return buildReport(ctx, topProducts, TopProductsSystemPrompt,
		formatTopProductsDataPrompt(topProducts, days, limit), "top products"), nil
}

// Helper functions to format data for AI prompts

func formatSalesDataPrompt(salesData interface{}) string {
	jsonData, _ := json.MarshalIndent(salesData, "", "  ")
	return fmt.Sprintf(`Analyze the following point-of-sale data and provide business insights:

%s

Please provide:
1. Key performance highlights and trends
2. Areas of concern or opportunity
3. Specific recommendations the shop owner can act on this week`, string(jsonData))
}

func formatInventoryDataPrompt(inventoryData interface{}) string {
	jsonData, _ := json.MarshalIndent(inventoryData, "", "  ")
	return fmt.Sprintf(`Analyze the following inventory status data and provide operational insights:

%s

Please provide:
1. Immediate reorder actions required
2. Stock tying up cash that should be discounted or returned
3. Anything unusual in the stock levels worth investigating`, string(jsonData))
}

func formatTopProductsDataPrompt(productsData interface{}, days, limit int) string {
	jsonData, _ := json.MarshalIndent(productsData, "", "  ")
	return fmt.Sprintf(`Analyze the top %d products sold over the last %d days and provide strategic insights:

%s

Please provide:
1. Success factors driving top product performance
2. Promotion and bundling opportunities
3. Pricing recommendations`, limit, days, string(jsonData))
}
