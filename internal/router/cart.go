package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dukapos/go-api/pkg/cart"
	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/mongo"
	"github.com/dukapos/go-api/pkg/redis"
)

// loadCart reconstructs the session's cart from the key-value store. The
// caller must Close the returned store when done.
func loadCart(c *gin.Context) (*cart.Cart, *redis.SessionStore) {
	store := redis.NewSessionStore(c.Param("sessionId"))
	ct := cart.New(store, global.GetDefaultLocationID())
	ct.Load()
	return ct, store
}

func cartPayload(ct *cart.Cart) map[string]interface{} {
	return map[string]interface{}{
		"items":           ct.Items(),
		"totals":          ct.Totals(),
		"item_count":      ct.ItemCount(),
		"customer_id":     ct.CustomerID(),
		"location_id":     ct.LocationID(),
		"notes":           ct.Notes(),
		"discount_code":   ct.DiscountCode(),
		"discount":        ct.AppliedDiscount(),
		"currency_symbol": global.GetCurrencySymbol(),
	}
}

func GetCart(c *gin.Context) {
	ct, store := loadCart(c)
	defer store.Close()

	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

func ClearCart(c *gin.Context) {
	ct, store := loadCart(c)
	defer store.Close()

	ct.Clear()
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type addToCartRequest struct {
	SKU       string `json:"sku" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	product, err := redis.GetProductBySKUFromCache(c.Request.Context(), req.SKU)
	if err != nil {
		product, err = mongo.GetProductBySKU(req.SKU)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
				{Field: "sku", Message: "No product exists with this SKU", Code: "not_found"},
			}))
			return
		}
	}

	var saleable models.Saleable = product
	if req.VariantID != "" {
		variant, err := findVariant(product.ID, req.VariantID)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Variant not found", []global.ValidationError{
				{Field: "variant_id", Message: "No variant with this id belongs to the product", Code: "not_found"},
			}))
			return
		}
		saleable = variant
	}

	ct, store := loadCart(c)
	defer store.Close()

	available := availableStock(product, req.VariantID, ct.LocationID())
	if err := ct.AddItem(saleable, req.Quantity, available); err != nil {
		if errors.Is(err, cart.ErrStockLimit) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Insufficient stock", []global.ValidationError{
				{Field: "quantity", Message: "Requested quantity exceeds available stock", Code: "stock_limit"},
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add item", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

func findVariant(productID bson.ObjectID, variantID string) (*models.ProductVariant, error) {
	variants, err := mongo.GetVariantsForProduct(productID)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		if variants[i].ID.Hex() == variantID {
			return &variants[i], nil
		}
	}
	return nil, errors.New("variant not found")
}

// availableStock resolves the quantity cap for a line. Untracked products
// and products with no inventory row get no cap.
func availableStock(product *models.Product, variantID, locationID string) int {
	if !product.TrackInventory {
		return 0
	}
	onHand, found, err := mongo.GetOnHand(product.ID.Hex(), variantID, locationID)
	if err != nil || !found {
		return 0
	}
	return onHand
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func UpdateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	if err := ct.UpdateQuantity(c.Param("itemId"), req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

func RemoveFromCart(c *gin.Context) {
	ct, store := loadCart(c)
	defer store.Close()

	if err := ct.RemoveItem(c.Param("itemId")); err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type itemDiscountRequest struct {
	Amount float64 `json:"amount"`
}

func ApplyItemDiscount(c *gin.Context) {
	var req itemDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	if err := ct.ApplyItemDiscount(c.Param("itemId"), req.Amount); err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Item not found in cart", []global.ValidationError{
			{Field: "itemId", Message: "No line item with this id exists in the cart", Code: "not_found"},
		}))
	case errors.Is(err, cart.ErrStockLimit):
		c.JSON(http.StatusConflict, global.ErrorResponse("Insufficient stock", []global.ValidationError{
			{Field: "quantity", Message: "Requested quantity exceeds available stock", Code: "stock_limit"},
		}))
	default:
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Cart operation failed", nil))
	}
}

type setCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

func SetCartCustomer(c *gin.Context) {
	var req setCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	ct.SetCustomer(req.CustomerID)
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type setLocationRequest struct {
	LocationID string `json:"location_id"`
}

func SetCartLocation(c *gin.Context) {
	var req setLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	ct.SetLocation(req.LocationID)
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type setNotesRequest struct {
	Notes string `json:"notes"`
}

func SetCartNotes(c *gin.Context) {
	var req setNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	ct.SetNotes(req.Notes)
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type discountCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func ApplyDiscountCode(c *gin.Context) {
	var req discountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	discount, err := mongo.GetDiscountByCode(req.Code)
	if err != nil {
		if errors.Is(err, mongo.ErrDiscountNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Discount code not found", []global.ValidationError{
				{Field: "code", Message: "No discount exists with this code", Code: "not_found"},
			}))
			return
		}
		if errors.Is(err, mongo.ErrDiscountExpired) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Discount code is not usable", []global.ValidationError{
				{Field: "code", Message: "This code is expired, inactive, or fully redeemed", Code: "not_usable"},
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to look up discount", nil))
		return
	}

	ct, store := loadCart(c)
	defer store.Close()

	if discount.MinPurchaseAmount > 0 && ct.Totals().Subtotal < discount.MinPurchaseAmount {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart below minimum purchase", []global.ValidationError{
			{Field: "code", Message: "Cart subtotal does not meet the discount's minimum purchase amount", Code: "min_purchase"},
		}))
		return
	}

	ct.SetDiscountCode(discount.Code, discount)
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

func RemoveDiscountCode(c *gin.Context) {
	ct, store := loadCart(c)
	defer store.Close()

	ct.SetDiscountCode("", nil)
	c.JSON(http.StatusOK, global.SuccessResponse(cartPayload(ct)))
}

type themeModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=light dark system"`
}

func GetThemeMode(c *gin.Context) {
	store := redis.NewSessionStore(c.Param("sessionId"))
	defer store.Close()

	mode, err := store.Get(redis.KeyThemeMode)
	if err != nil {
		mode = "system"
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"mode": mode}))
}

func SetThemeMode(c *gin.Context) {
	var req themeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "mode", Message: "Mode must be light, dark, or system", Code: "validation_error"},
		}))
		return
	}

	store := redis.NewSessionStore(c.Param("sessionId"))
	defer store.Close()

	if err := store.Set(redis.KeyThemeMode, req.Mode); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to save theme mode", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"mode": req.Mode}))
}
