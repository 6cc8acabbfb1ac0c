// Package cart owns the in-progress sale: the line items, the session
// context around them, and the totals derived from both. Every mutation
// recomputes totals through the pricing engine before it returns, then
// persists the new state to the injected key-value store.
package cart

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/pricing"
)

// Store is the durable key-value store cart state survives restarts in.
// Persistence is fire-and-forget: mutations never wait on it, and a failed
// write is logged rather than returned.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// ErrNotFound is returned by Store.Get when a key has no value.
var ErrNotFound = errors.New("cart: key not found")

var (
	ErrItemNotFound = errors.New("cart: line item not found")
	// ErrStockLimit is returned when a quantity change would exceed the
	// line's available stock. Surfaced to the caller rather than silently
	// dropped so the till can show it.
	ErrStockLimit = errors.New("cart: quantity exceeds available stock")
)

// Persistence keys within one session's namespace.
const (
	keyItems    = "cart_items"
	keyCustomer = "cart_customer"
	keyLocation = "cart_location"
	keyNotes    = "cart_notes"
	keyDiscount = "cart_discount"
)

type persistedDiscount struct {
	Code     string           `json:"code"`
	Discount *models.Discount `json:"discount"`
}

// Cart is the aggregate for one active sale. It is owned by a single session
// and is not safe for concurrent use.
type Cart struct {
	store           Store
	defaultLocation string

	items           []models.LineItem
	customerID      string
	locationID      string
	discountCode    string
	appliedDiscount *models.Discount
	notes           string
	totals          models.CartTotals
}

func New(store Store, defaultLocation string) *Cart {
	return &Cart{
		store:           store,
		defaultLocation: defaultLocation,
		locationID:      defaultLocation,
	}
}

// AddItem adds a product or variant to the cart, snapshotting its pricing at
// add time. If a line for the same product-or-variant already exists its
// quantity is incremented; a bare product and one of its variants are
// distinct lines. available caps the line quantity; pass 0 or less for
// untracked inventory.
func (c *Cart) AddItem(s models.Saleable, quantity, available int) error {
	if quantity < 1 {
		quantity = 1
	}
	maxQuantity := available
	if maxQuantity <= 0 {
		maxQuantity = models.UntrackedStock
	}

	isVariant := s.ParentProductID() != ""
	idx := c.findMatch(s.SaleableID(), isVariant)

	if idx >= 0 {
		existing := &c.items[idx]
		newQuantity := existing.Quantity + quantity
		if newQuantity > existing.MaxQuantity {
			return ErrStockLimit
		}
		existing.Quantity = newQuantity
	} else {
		item := models.LineItem{
			ID:          "cart_" + uuid.NewString(),
			ProductID:   s.SaleableID(),
			Name:        s.DisplayName(),
			SKU:         s.SaleSKU(),
			Barcode:     s.SaleBarcode(),
			Quantity:    quantity,
			UnitPrice:   s.UnitPrice(),
			CostPrice:   s.UnitCost(),
			TaxRate:     s.SaleTaxRate(),
			ImageURL:    s.SaleImageURL(),
			MaxQuantity: maxQuantity,
		}
		if isVariant {
			item.ProductID = s.ParentProductID()
			item.VariantID = s.SaleableID()
			item.VariantName = s.DisplayName()
		}
		item.Normalize()
		if item.Quantity > item.MaxQuantity {
			return ErrStockLimit
		}
		c.items = append(c.items, item)
	}

	c.recompute()
	c.Save()
	return nil
}

// UpdateQuantity replaces a line's quantity. Anything below 1 removes the
// line; anything above the line's stock cap is rejected.
func (c *Cart) UpdateQuantity(lineItemID string, quantity int) error {
	idx := c.findByID(lineItemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	if quantity < 1 {
		return c.RemoveItem(lineItemID)
	}
	if quantity > c.items[idx].MaxQuantity {
		return ErrStockLimit
	}

	c.items[idx].Quantity = quantity
	c.recompute()
	c.Save()
	return nil
}

// RemoveItem drops a line unconditionally.
func (c *Cart) RemoveItem(lineItemID string) error {
	idx := c.findByID(lineItemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.recompute()
	c.Save()
	return nil
}

// ApplyItemDiscount sets a line-level discount, clamped so the line total can
// never go negative.
func (c *Cart) ApplyItemDiscount(lineItemID string, amount float64) error {
	idx := c.findByID(lineItemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	item := &c.items[idx]
	if amount < 0 {
		amount = 0
	}
	if subtotal := item.Subtotal(); amount > subtotal {
		amount = subtotal
	}
	item.ItemDiscount = amount

	c.recompute()
	c.Save()
	return nil
}

// SetDiscountCode replaces the active order-level discount; pass a nil
// discount to clear it.
func (c *Cart) SetDiscountCode(code string, discount *models.Discount) {
	c.discountCode = code
	c.appliedDiscount = discount
	if discount == nil {
		c.discountCode = ""
	}
	c.recompute()
	c.Save()
}

func (c *Cart) SetCustomer(customerID string) {
	c.customerID = customerID
	c.Save()
}

func (c *Cart) SetLocation(locationID string) {
	if locationID == "" {
		locationID = c.defaultLocation
	}
	c.locationID = locationID
	c.Save()
}

func (c *Cart) SetNotes(notes string) {
	c.notes = notes
	c.Save()
}

// Clear resets the cart to empty and erases its persisted keys.
func (c *Cart) Clear() {
	c.items = nil
	c.customerID = ""
	c.locationID = c.defaultLocation
	c.discountCode = ""
	c.appliedDiscount = nil
	c.notes = ""
	c.totals = models.CartTotals{}

	for _, key := range []string{keyItems, keyCustomer, keyLocation, keyNotes, keyDiscount} {
		if err := c.store.Remove(key); err != nil {
			log.Printf("Warning: failed to remove %s from cart store: %v", key, err)
		}
	}
}

// Load restores a persisted cart, including location and applied discount,
// and recomputes totals over whatever was restored.
func (c *Cart) Load() {
	if raw, err := c.store.Get(keyItems); err == nil {
		var items []models.LineItem
		if jsonErr := json.Unmarshal([]byte(raw), &items); jsonErr != nil {
			log.Printf("Warning: failed to decode persisted cart items: %v", jsonErr)
		} else {
			for i := range items {
				items[i].Normalize()
			}
			c.items = items
		}
	} else if !errors.Is(err, ErrNotFound) {
		log.Printf("Warning: failed to load cart items: %v", err)
	}

	if customer, err := c.store.Get(keyCustomer); err == nil {
		c.customerID = customer
	}
	if location, err := c.store.Get(keyLocation); err == nil && location != "" {
		c.locationID = location
	}
	if notes, err := c.store.Get(keyNotes); err == nil {
		c.notes = notes
	}
	if raw, err := c.store.Get(keyDiscount); err == nil {
		var pd persistedDiscount
		if jsonErr := json.Unmarshal([]byte(raw), &pd); jsonErr != nil {
			log.Printf("Warning: failed to decode persisted cart discount: %v", jsonErr)
		} else {
			c.discountCode = pd.Code
			c.appliedDiscount = pd.Discount
		}
	}

	c.recompute()
}

// Save writes the full cart state to the store. Failures are logged, not
// returned: the in-memory state is already consistent and the till keeps
// working.
func (c *Cart) Save() {
	itemsJSON, err := json.Marshal(c.items)
	if err != nil {
		log.Printf("Warning: failed to encode cart items: %v", err)
		return
	}
	c.setOrRemove(keyItems, string(itemsJSON), len(c.items) > 0)
	c.setOrRemove(keyCustomer, c.customerID, c.customerID != "")
	c.setOrRemove(keyLocation, c.locationID, c.locationID != "")
	c.setOrRemove(keyNotes, c.notes, c.notes != "")

	if c.appliedDiscount != nil {
		discountJSON, err := json.Marshal(persistedDiscount{Code: c.discountCode, Discount: c.appliedDiscount})
		if err != nil {
			log.Printf("Warning: failed to encode cart discount: %v", err)
			return
		}
		c.setOrRemove(keyDiscount, string(discountJSON), true)
	} else {
		c.setOrRemove(keyDiscount, "", false)
	}
}

func (c *Cart) setOrRemove(key, value string, present bool) {
	var err error
	if present {
		err = c.store.Set(key, value)
	} else {
		err = c.store.Remove(key)
	}
	if err != nil {
		log.Printf("Warning: failed to persist %s: %v", key, err)
	}
}

// recompute resolves the order-level discount against the current subtotal
// and rebuilds totals. Runs at the end of every mutating operation so totals
// are never stale relative to the item list.
func (c *Cart) recompute() {
	var subtotal float64
	for i := range c.items {
		subtotal += c.items[i].Subtotal()
	}
	orderDiscount := pricing.DiscountFor(c.appliedDiscount, subtotal)
	c.totals = pricing.Totals(c.items, orderDiscount)
}

func (c *Cart) findMatch(saleableID string, isVariant bool) int {
	for i := range c.items {
		if isVariant {
			if c.items[i].VariantID == saleableID {
				return i
			}
		} else if c.items[i].ProductID == saleableID && c.items[i].VariantID == "" {
			return i
		}
	}
	return -1
}

func (c *Cart) findByID(lineItemID string) int {
	for i := range c.items {
		if c.items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// Items returns a copy of the line items; callers cannot mutate cart state
// through it.
func (c *Cart) Items() []models.LineItem {
	items := make([]models.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Totals() models.CartTotals         { return c.totals }
func (c *Cart) CustomerID() string                { return c.customerID }
func (c *Cart) LocationID() string                { return c.locationID }
func (c *Cart) DiscountCode() string              { return c.discountCode }
func (c *Cart) AppliedDiscount() *models.Discount { return c.appliedDiscount }
func (c *Cart) Notes() string                     { return c.notes }

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount is the summed quantity across lines, for the cart badge.
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.items {
		count += c.items[i].Quantity
	}
	return count
}
