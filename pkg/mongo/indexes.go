package mongo

import (
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dukapos/go-api/pkg/global"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products Collection Indexes
	// Index 1: SKU unique index
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sku_unique"),
		},
	},
	// Index 2: Barcode lookup for scanner events
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "barcode", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_barcode"),
		},
	},
	// Index 3: Single-field index on category for filtering
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
	},
	// Index 4: Text index for full-text search on products
	{
		CollectionName: "products",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().
				SetName("idx_product_text_search").
				SetWeights(bson.D{
					{Key: "name", Value: 10},
					{Key: "tags", Value: 5},
					{Key: "description", Value: 1},
				}),
		},
	},

	// Product Variants Collection Indexes
	{
		CollectionName: "product_variants",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetName("idx_variant_product"),
		},
	},
	{
		CollectionName: "product_variants",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "barcode", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_variant_barcode"),
		},
	},

	// Orders Collection Indexes
	// Unique index on order_number
	{
		CollectionName: "orders",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_order_number_unique"),
		},
	},
	// Compound index for the order list screen and analytics queries
	{
		CollectionName: "orders",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_order_status_created"),
		},
	},
	{
		CollectionName: "order_items",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("idx_order_items_order"),
		},
	},
	{
		CollectionName: "payments",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("idx_payments_order"),
		},
	},

	// Inventory Collection Indexes
	{
		CollectionName: "inventory",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "location_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
			Options: options.Index().SetName("idx_inventory_location"),
		},
	},

	// Stock Movements Collection Indexes
	// Time-series index for recent movement history
	{
		CollectionName: "stock_movements",
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "created_at", Value: -1},
				{Key: "product_id", Value: 1},
			},
			Options: options.Index().SetName("idx_movement_time"),
		},
	},

	// Staff Collection Indexes
	{
		CollectionName: "staff",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_staff_email_unique"),
		},
	},

	// Discounts Collection Indexes
	{
		CollectionName: "discounts",
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_discount_code_unique"),
		},
	},
}

func EnsureIndexes() error {
	log.Println("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		collection := GetCollection(idxConfig.CollectionName)
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Printf("Error creating index on collection %s: %v",
				idxConfig.CollectionName, err)
			return err
		}

		log.Printf("✓ Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}

	log.Println("All indexes created successfully!")
	return nil
}

func EnsureIndexesOnStartup() {
	if err := EnsureIndexes(); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
}
