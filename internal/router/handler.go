package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/mongo"
	"github.com/dukapos/go-api/pkg/redis"
	"github.com/dukapos/go-api/pkg/search"
)

// productSearch tags invocations so a slow earlier query can never
// overwrite a faster later one on the sales screen.
var productSearch = search.NewService(mongo.ProductIndex{})

func HealthCheck(c *gin.Context) {
	db := mongo.GetDatabase()
	if err := db.Client().Ping(c, nil); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// SearchProducts serves the sales screen's product search box.
func SearchProducts(c *gin.Context) {
	query := c.Query("q")

	products, err := productSearch.Search(c.Request.Context(), query)
	if errors.Is(err, search.ErrStale) {
		c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
			"stale": true,
		}))
		return
	}
	if err != nil {
		log.Printf("Error searching products: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to search products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"products": products,
		"count":    len(products),
	}))
}

// ScanBarcode resolves one scanner event against product and variant
// barcodes.
func ScanBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Barcode required", []global.ValidationError{
			{Field: "barcode", Message: "A decoded barcode value is required", Code: "required"},
		}))
		return
	}

	// Try the cache first; scans are hot-path at the till
	if product, err := redis.GetProductByBarcodeFromCache(c.Request.Context(), barcode); err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(saleablePayload(product)))
		return
	}

	match, err := mongo.LookupBarcode(barcode)
	if err != nil {
		if errors.Is(err, mongo.ErrBarcodeNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Barcode not found", []global.ValidationError{
				{Field: "barcode", Message: "No product or variant matches this barcode", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error looking up barcode: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to look up barcode", nil))
		return
	}

	if product, ok := match.(*models.Product); ok {
		if cacheErr := redis.CacheSingleProduct(c.Request.Context(), product); cacheErr != nil {
			log.Printf("Warning: Failed to cache product in Redis: %v", cacheErr)
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(saleablePayload(match)))
}

func saleablePayload(s models.Saleable) map[string]interface{} {
	return map[string]interface{}{
		"saleable_id":   s.SaleableID(),
		"product_id":    firstNonEmpty(s.ParentProductID(), s.SaleableID()),
		"is_variant":    s.ParentProductID() != "",
		"name":          s.DisplayName(),
		"sku":           s.SaleSKU(),
		"barcode":       s.SaleBarcode(),
		"selling_price": s.UnitPrice(),
		"tax_rate":      s.SaleTaxRate(),
		"image_url":     s.SaleImageURL(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func CreateNewProducts(c *gin.Context) {
	var req []models.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No products provided", []global.ValidationError{
			{Field: "products", Message: "At least one product is required", Code: "empty_array"},
		}))
		return
	}

	products := make([]*models.Product, len(req))
	for i, productReq := range req {
		products[i] = productReq.ToProduct()
	}

	if err := mongo.CreateProducts(products); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create products", nil))
		return
	}

	if err := redis.AddProductsToCache(c.Request.Context(), products); err != nil {
		// Log the error but don't fail the request since MongoDB succeeded
		log.Printf("Warning: Failed to cache products in Redis: %v", err)
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]interface{}{
		"products": products,
		"count":    len(products),
	}))
}

// GetProductBySKU retrieves a product by SKU with Redis caching
func GetProductBySKU(c *gin.Context) {
	sku := c.Param("sku")

	if len(sku) < 3 || len(sku) > 50 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid SKU format", []global.ValidationError{
			{Field: "sku", Message: "SKU must be between 3 and 50 characters", Code: "invalid_format"},
		}))
		return
	}

	ctx := c.Request.Context()

	product, err := redis.GetProductBySKUFromCache(ctx, sku)
	if err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	product, err = mongo.GetProductBySKU(sku)
	if err != nil {
		if err.Error() == "mongo: no documents in result" {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error fetching product from MongoDB: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	if cacheErr := redis.CacheSingleProduct(ctx, product); cacheErr != nil {
		log.Printf("Warning: Failed to cache product in Redis: %v", cacheErr)
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

// EditProductBySKU updates specific fields of a product by SKU
func EditProductBySKU(c *gin.Context) {
	sku := c.Param("sku")

	if len(sku) < 3 || len(sku) > 50 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid SKU format", []global.ValidationError{
			{Field: "sku", Message: "SKU must be between 3 and 50 characters", Code: "invalid_format"},
		}))
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}

	// Immutable fields are dropped from the update rather than erroring
	immutableFields := []string{"_id", "id", "sku", "created_at"}
	for _, field := range immutableFields {
		if _, exists := updates[field]; exists {
			delete(updates, field)
			log.Printf("Warning: Removed immutable field '%s' from update request", field)
		}
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No valid updates provided", []global.ValidationError{
			{Field: "body", Message: "Request body must contain at least one updatable field", Code: "empty_updates"},
		}))
		return
	}

	updatedProduct, err := mongo.UpdateProductBySKU(sku, updates)
	if err != nil {
		if err.Error() == "mongo: no documents in result" {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error updating product in MongoDB: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update product", nil))
		return
	}

	if cacheErr := redis.CacheSingleProduct(c.Request.Context(), updatedProduct); cacheErr != nil {
		log.Printf("Warning: Failed to update product cache in Redis: %v", cacheErr)
	}

	c.Header("X-Cache", "REFRESHED")
	c.JSON(http.StatusOK, global.SuccessResponse(updatedProduct))
}

// DeleteProductBySKU deletes a product by SKU from both database and cache
func DeleteProductBySKU(c *gin.Context) {
	sku := c.Param("sku")

	if len(sku) < 3 || len(sku) > 50 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid SKU format", []global.ValidationError{
			{Field: "sku", Message: "SKU must be between 3 and 50 characters", Code: "invalid_format"},
		}))
		return
	}

	deletedProduct, err := mongo.DeleteProductBySKU(sku)
	if err != nil {
		if err.Error() == "mongo: no documents in result" {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error deleting product from MongoDB: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete product", nil))
		return
	}

	if cacheErr := redis.RemoveProductFromCache(c.Request.Context(), deletedProduct); cacheErr != nil {
		log.Printf("Warning: Failed to remove product from Redis cache: %v", cacheErr)
	}

	c.Header("X-Cache", "DELETED")
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"deleted_product": deletedProduct,
		"message":         "Product successfully deleted",
	}))
}

func GetCustomers(c *gin.Context) {
	customers, err := mongo.GetCustomers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch customers", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(customers))
}

func GetLocations(c *gin.Context) {
	locations, err := mongo.GetLocations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch locations", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(locations))
}
