package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/search"
)

// ErrBarcodeNotFound is returned when a scanned code matches neither a
// product nor a variant.
var ErrBarcodeNotFound = errors.New("barcode not found")

func CreateProducts(products []*models.Product) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("products")

	docs := make([]interface{}, len(products))
	for i, product := range products {
		docs[i] = product
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}

func GetProductBySKU(sku string) (*models.Product, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("products")

	var product models.Product
	err := collection.FindOne(ctx, bson.D{{Key: "sku", Value: sku}}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProductBySKU(sku string, updates bson.M) (*models.Product, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("products")

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var product models.Product
	err := collection.FindOneAndUpdate(ctx,
		bson.D{{Key: "sku", Value: sku}},
		bson.M{"$set": updates},
		opts,
	).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func DeleteProductBySKU(sku string) (*models.Product, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("products")

	var product models.Product
	err := collection.FindOneAndDelete(ctx, bson.D{{Key: "sku", Value: sku}}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func GetVariantsForProduct(productID bson.ObjectID) ([]models.ProductVariant, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("product_variants")

	cursor, err := collection.Find(ctx, bson.D{{Key: "product_id", Value: productID}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var variants []models.ProductVariant
	if err := cursor.All(ctx, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// LookupBarcode resolves one scanner event. Products are checked first,
// then variants, matching how codes are assigned in the catalog.
func LookupBarcode(code string) (models.Saleable, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	var product models.Product
	err := GetCollection("products").
		FindOne(ctx, bson.D{{Key: "barcode", Value: code}}).
		Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	var variant models.ProductVariant
	err = GetCollection("product_variants").
		FindOne(ctx, bson.D{{Key: "barcode", Value: code}}).
		Decode(&variant)
	if err == nil {
		return &variant, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s", ErrBarcodeNotFound, code)
}

// ProductIndex serves product searches from the text index on the
// products collection.
type ProductIndex struct{}

func (ProductIndex) SearchProducts(ctx context.Context, q search.Query) ([]models.Product, error) {
	collection := GetCollection("products")

	filter := bson.D{
		{Key: "$text", Value: bson.D{{Key: "$search", Value: q.Text}}},
	}
	if q.ActiveOnly {
		filter = append(filter, bson.E{Key: "is_active", Value: true})
	}

	opts := options.Find().
		SetProjection(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}).
		SetSort(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	if q.PageSize > 0 {
		opts = opts.SetLimit(int64(q.PageSize))
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
