package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukapos/go-api/pkg/models"
)

const cacheTTL = 24 * time.Hour

func AddProductsToCache(ctx context.Context, products []*models.Product) error {
	for _, product := range products {
		if err := CacheSingleProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to cache product %s: %w", product.SKU, err)
		}
	}

	return nil
}

// CacheSingleProduct stores a product in Redis using SKU-based keys and a
// barcode mapping so scanner lookups can skip the database on a hit.
func CacheSingleProduct(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.SKU, err)
	}

	pipe := client.TxPipeline()

	productKey := fmt.Sprintf("product:%s", product.SKU)
	pipe.Set(ctx, productKey, productJSON, cacheTTL)

	if product.Barcode != "" {
		barcodeKey := fmt.Sprintf("barcode:%s", product.Barcode)
		pipe.Set(ctx, barcodeKey, product.SKU, cacheTTL)
	}

	if product.Category != "" {
		categoryKey := fmt.Sprintf("category:%s", product.Category)
		pipe.LPush(ctx, categoryKey, product.SKU)
		pipe.Expire(ctx, categoryKey, cacheTTL)
	}

	pipe.LPush(ctx, "products:recent", product.SKU)
	// Keep only the 100 most recent products
	pipe.LTrim(ctx, "products:recent", 0, 99)
	pipe.Expire(ctx, "products:recent", cacheTTL)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for product %s: %w", product.SKU, err)
	}

	return nil
}

func GetProductBySKUFromCache(ctx context.Context, sku string) (*models.Product, error) {
	client := RedisClient()
	defer client.Close()

	productKey := fmt.Sprintf("product:%s", sku)
	productJSON, err := client.Get(ctx, productKey).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// GetProductByBarcodeFromCache resolves a scanned barcode through the
// barcode mapping, then loads the product itself.
func GetProductByBarcodeFromCache(ctx context.Context, barcode string) (*models.Product, error) {
	client := RedisClient()
	defer client.Close()

	barcodeKey := fmt.Sprintf("barcode:%s", barcode)
	sku, err := client.Get(ctx, barcodeKey).Result()
	if err != nil {
		return nil, err
	}

	return GetProductBySKUFromCache(ctx, sku)
}

// RemoveProductFromCache removes a product and its related cache entries by SKU
func RemoveProductFromCache(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	pipe := client.TxPipeline()

	productKey := fmt.Sprintf("product:%s", product.SKU)
	pipe.Del(ctx, productKey)

	if product.Barcode != "" {
		barcodeKey := fmt.Sprintf("barcode:%s", product.Barcode)
		pipe.Del(ctx, barcodeKey)
	}

	if product.Category != "" {
		categoryKey := fmt.Sprintf("category:%s", product.Category)
		pipe.LRem(ctx, categoryKey, 0, product.SKU)
	}

	pipe.LRem(ctx, "products:recent", 0, product.SKU)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove product from Redis cache: %w", err)
	}

	return nil
}
