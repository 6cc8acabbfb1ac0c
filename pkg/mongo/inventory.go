package mongo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/stock"
)

// GetInventory lists on-hand records, most recently updated first. The
// location filter is skipped for the placeholder and "all" values so a
// fresh install without a configured location still sees its stock.
func GetInventory(locationID, query string) ([]models.Inventory, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("inventory")

	filter := bson.D{}
	if locationID != "" && locationID != "all" && locationID != global.GetDefaultLocationID() {
		filter = append(filter, bson.E{Key: "location_id", Value: locationID})
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Inventory
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	if query == "" {
		return items, nil
	}

	lower := strings.ToLower(query)
	filtered := make([]models.Inventory, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ProductName), lower) ||
			strings.Contains(strings.ToLower(item.VariantName), lower) ||
			strings.Contains(strings.ToLower(item.SKU), lower) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetOnHand returns the available quantity for one product or variant at a
// location. A missing row means inventory is not tracked for it; the second
// return reports whether a row was found.
func GetOnHand(productID, variantID, locationID string) (int, bool, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("inventory")

	filter := bson.D{{Key: "location_id", Value: locationID}}
	if variantID != "" {
		filter = append(filter, bson.E{Key: "variant_id", Value: variantID})
	} else {
		filter = append(filter, bson.E{Key: "product_id", Value: productID})
	}

	var row models.Inventory
	err := collection.FindOne(ctx, filter).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.Quantity - row.ReservedQuantity, true, nil
}

// AdjustStock appends the movement record, then applies the signed delta to
// the on-hand count.
func AdjustStock(adj *stock.Adjustment) error {
	if err := adj.Validate(); err != nil {
		return err
	}

	inventoryID, err := bson.ObjectIDFromHex(adj.InventoryID)
	if err != nil {
		return fmt.Errorf("invalid inventory id %q: %w", adj.InventoryID, err)
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	movement := adj.Movement()
	if _, err := GetCollection("stock_movements").InsertOne(ctx, &movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	_, err = GetCollection("inventory").UpdateOne(ctx,
		bson.D{{Key: "_id", Value: inventoryID}},
		bson.M{
			"$inc": bson.M{"quantity": adj.Delta()},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory count: %w", err)
	}
	return nil
}

// GetStockMovements lists the recent movement history for one product.
func GetStockMovements(productID string, limit int64) ([]models.StockMovement, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("stock_movements")

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := collection.Find(ctx, bson.D{{Key: "product_id", Value: productID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movements []models.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}
