package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/pricing"
)

type SalesMetrics struct {
	TotalSales        float64 `json:"total_sales"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalDiscount     float64 `json:"total_discount"`
	TotalTax          float64 `json:"total_tax"`
	LayawayRevenue    float64 `json:"layaway_revenue"`
	Period            string  `json:"period"`
}

type InventoryMetrics struct {
	TotalItems      int     `json:"total_items"`
	TotalStockValue float64 `json:"total_stock_value"`
	LowStockCount   int     `json:"low_stock_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
}

type SalesTrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type TopProduct struct {
	ProductID    string  `json:"product_id" bson:"_id"`
	Name         string  `json:"name" bson:"name"`
	QuantitySold int     `json:"quantity_sold" bson:"quantity_sold"`
	Revenue      float64 `json:"revenue" bson:"revenue"`
}

func periodRange(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case "week":
		// Week starts on Monday
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 1)
	}
}

func ordersInRange(locationID string, start, end time.Time) ([]models.Order, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("orders")

	filter := bson.D{
		{Key: "status", Value: bson.M{"$in": bson.A{
			models.OrderStatusCompleted,
			models.OrderStatusLayaway,
		}}},
		{Key: "created_at", Value: bson.M{"$gte": start, "$lt": end}},
	}
	if locationID != "" && locationID != "all" {
		filter = append(filter, bson.E{Key: "location_id", Value: locationID})
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetSalesMetrics summarizes sales for today, this week, or this month.
// Completed orders count in full; layaway orders contribute revenue in
// proportion to what has been paid so far.
func GetSalesMetrics(locationID, period string) (*SalesMetrics, error) {
	start, end := periodRange(period, time.Now())
	orders, err := ordersInRange(locationID, start, end)
	if err != nil {
		return nil, err
	}

	metrics := &SalesMetrics{Period: period}
	for i := range orders {
		order := &orders[i]
		metrics.TotalOrders++
		metrics.TotalDiscount += order.DiscountAmount
		metrics.TotalTax += order.TaxAmount

		if order.Status == models.OrderStatusLayaway {
			revenue := pricing.LayawayProportionalRevenue(order.TotalAmount, order.PaidAmount)
			metrics.TotalSales += revenue
			metrics.LayawayRevenue += revenue
		} else {
			metrics.TotalSales += order.TotalAmount
		}
	}
	if metrics.TotalOrders > 0 {
		metrics.AverageOrderValue = metrics.TotalSales / float64(metrics.TotalOrders)
	}
	return metrics, nil
}

// GetSalesTrend returns daily sales totals for the last 7 or 30 days, with
// zero-filled days so the chart has a continuous axis.
func GetSalesTrend(locationID string, days int) ([]SalesTrendPoint, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(days - 1))

	orders, err := ordersInRange(locationID, start, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	daily := make(map[string]float64, days)
	for i := 0; i < days; i++ {
		daily[start.AddDate(0, 0, i).Format("2006-01-02")] = 0
	}
	for i := range orders {
		order := &orders[i]
		key := order.CreatedAt.Format("2006-01-02")
		if _, ok := daily[key]; !ok {
			continue
		}
		if order.Status == models.OrderStatusLayaway {
			daily[key] += pricing.LayawayProportionalRevenue(order.TotalAmount, order.PaidAmount)
		} else {
			daily[key] += order.TotalAmount
		}
	}

	points := make([]SalesTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, SalesTrendPoint{Date: date, Amount: daily[date]})
	}
	return points, nil
}

// GetInventoryMetrics totals on-hand stock and flags low/out-of-stock rows.
func GetInventoryMetrics(locationID string) (*InventoryMetrics, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("inventory")

	filter := bson.D{}
	if locationID != "" && locationID != "all" {
		filter = append(filter, bson.E{Key: "location_id", Value: locationID})
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Inventory
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	metrics := &InventoryMetrics{}
	for i := range items {
		item := &items[i]
		metrics.TotalItems += item.Quantity
		metrics.TotalStockValue += float64(item.Quantity) * item.CostPrice

		if item.Quantity <= 0 {
			metrics.OutOfStockCount++
		} else if item.Quantity <= item.ReorderPoint {
			metrics.LowStockCount++
		}
	}
	return metrics, nil
}

// GetTopProducts aggregates the best sellers over the last N days.
func GetTopProducts(days int, limit int) ([]TopProduct, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("order_items")

	since := time.Now().AddDate(0, 0, -days)

	pipeline := bson.A{
		bson.D{
			{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: "orders"},
				{Key: "localField", Value: "order_id"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "order"},
			}},
		},
		bson.D{{Key: "$unwind", Value: "$order"}},
		bson.D{
			{Key: "$match", Value: bson.D{
				{Key: "order.status", Value: models.OrderStatusCompleted},
				{Key: "order.created_at", Value: bson.D{{Key: "$gte", Value: since}}},
			}},
		},
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$product_id"},
				{Key: "name", Value: bson.D{{Key: "$first", Value: "$product_name"}}},
				{Key: "quantity_sold", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
				{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			}},
		},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []TopProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
