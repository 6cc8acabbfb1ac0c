package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product represents a catalog product sold at the point of sale
type Product struct {
	ID                bson.ObjectID     `json:"id" bson:"_id,omitempty"`
	SKU               string            `json:"sku" bson:"sku" validate:"required,min=3,max=50"`
	Barcode           string            `json:"barcode" bson:"barcode"`
	Name              string            `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description       string            `json:"description" bson:"description" validate:"max=2000"`
	Category          string            `json:"category" bson:"category" validate:"max=100"`
	Brand             string            `json:"brand" bson:"brand" validate:"max=100"`
	CostPrice         float64           `json:"cost_price" bson:"cost_price" validate:"gte=0"`
	SellingPrice      float64           `json:"selling_price" bson:"selling_price" validate:"required,gt=0"`
	CompareAtPrice    float64           `json:"compare_at_price" bson:"compare_at_price"`
	TaxRate           float64           `json:"tax_rate" bson:"tax_rate" validate:"gte=0,lte=100"` // percentage, e.g. 16 for 16%
	HasVariants       bool              `json:"has_variants" bson:"has_variants"`
	TrackInventory    bool              `json:"track_inventory" bson:"track_inventory"`
	LowStockThreshold int               `json:"low_stock_threshold" bson:"low_stock_threshold"`
	ImageURL          string            `json:"image_url" bson:"image_url,omitempty"`
	Tags              []string          `json:"tags" bson:"tags"`
	Attributes        map[string]string `json:"attributes" bson:"attributes"`
	IsActive          bool              `json:"is_active" bson:"is_active"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" bson:"updated_at"`
}

// ProductVariant represents one sellable variation of a product (e.g. "Red / L").
// A variant carries its own pricing snapshot fields so it can be sold
// independently of its parent product.
type ProductVariant struct {
	ID           bson.ObjectID     `json:"id" bson:"_id,omitempty"`
	ProductID    bson.ObjectID     `json:"product_id" bson:"product_id" validate:"required"`
	SKU          string            `json:"sku" bson:"sku" validate:"required,min=3,max=50"`
	Barcode      string            `json:"barcode" bson:"barcode"`
	Name         string            `json:"name" bson:"name"` // generated, e.g. "Red / L"
	OptionValues map[string]string `json:"option_values" bson:"option_values"`
	CostPrice    float64           `json:"cost_price" bson:"cost_price" validate:"gte=0"`
	SellingPrice float64           `json:"selling_price" bson:"selling_price" validate:"required,gt=0"`
	TaxRate      float64           `json:"tax_rate" bson:"tax_rate" validate:"gte=0,lte=100"`
	ImageURL     string            `json:"image_url" bson:"image_url,omitempty"`
	IsActive     bool              `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" bson:"updated_at"`
}

// Saleable is the shared accessor surface the cart needs from either a
// product or one of its variants. ParentProductID is empty for a bare
// product and set for a variant, which is how the two cases are told apart.
type Saleable interface {
	SaleableID() string
	ParentProductID() string
	DisplayName() string
	SaleSKU() string
	SaleBarcode() string
	UnitPrice() float64
	UnitCost() float64
	SaleTaxRate() float64
	SaleImageURL() string
}

func (p *Product) SaleableID() string      { return p.ID.Hex() }
func (p *Product) ParentProductID() string { return "" }
func (p *Product) DisplayName() string     { return p.Name }
func (p *Product) SaleSKU() string         { return p.SKU }
func (p *Product) SaleBarcode() string     { return p.Barcode }
func (p *Product) UnitPrice() float64      { return p.SellingPrice }
func (p *Product) UnitCost() float64       { return p.CostPrice }
func (p *Product) SaleTaxRate() float64    { return p.TaxRate }
func (p *Product) SaleImageURL() string    { return p.ImageURL }

func (v *ProductVariant) SaleableID() string      { return v.ID.Hex() }
func (v *ProductVariant) ParentProductID() string { return v.ProductID.Hex() }
func (v *ProductVariant) DisplayName() string     { return v.Name }
func (v *ProductVariant) SaleSKU() string         { return v.SKU }
func (v *ProductVariant) SaleBarcode() string     { return v.Barcode }
func (v *ProductVariant) UnitPrice() float64      { return v.SellingPrice }
func (v *ProductVariant) UnitCost() float64       { return v.CostPrice }
func (v *ProductVariant) SaleTaxRate() float64    { return v.TaxRate }
func (v *ProductVariant) SaleImageURL() string    { return v.ImageURL }

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name              string            `json:"name" validate:"required,min=2,max=200"`
	Description       string            `json:"description" validate:"max=2000"`
	Category          string            `json:"category" validate:"max=100"`
	Brand             string            `json:"brand" validate:"max=100"`
	Barcode           string            `json:"barcode"`
	CostPrice         float64           `json:"cost_price" validate:"gte=0"`
	SellingPrice      float64           `json:"selling_price" validate:"required,gt=0"`
	TaxRate           float64           `json:"tax_rate" validate:"gte=0,lte=100"`
	TrackInventory    bool              `json:"track_inventory"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	ImageURL          string            `json:"image_url"`
	Tags              []string          `json:"tags"`
	Attributes        map[string]string `json:"attributes"`
}

func (req *CreateProductRequest) GenerateSKU() string {
	prefix := "PRD"
	if len(req.Brand) >= 3 {
		prefix = strings.ToUpper(req.Brand[:3])
	} else if req.Brand != "" {
		prefix = strings.ToUpper(req.Brand)
	}
	timestamp := time.Now().Unix()
	return fmt.Sprintf("%s-%d", prefix, timestamp)
}

func (req *CreateProductRequest) ToProduct() *Product {
	product := &Product{
		ID:                bson.NewObjectID(),
		SKU:               req.GenerateSKU(),
		Barcode:           req.Barcode,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Brand:             req.Brand,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		TaxRate:           req.TaxRate,
		TrackInventory:    req.TrackInventory,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		Tags:              req.Tags,
		Attributes:        req.Attributes,
		IsActive:          true,
	}
	product.SetTimestamps()
	if product.Attributes == nil {
		product.Attributes = make(map[string]string)
	}
	return product
}
