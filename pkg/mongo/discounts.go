package mongo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
)

var (
	ErrDiscountNotFound = errors.New("discount code not found")
	ErrDiscountExpired  = errors.New("discount code is not currently usable")
)

// GetDiscountByCode looks up a code and checks it is currently usable.
// Codes are matched case-insensitively by storing them uppercased.
func GetDiscountByCode(code string) (*models.Discount, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("discounts")

	var discount models.Discount
	err := collection.FindOne(ctx, bson.D{
		{Key: "code", Value: strings.ToUpper(strings.TrimSpace(code))},
	}).Decode(&discount)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrDiscountNotFound, code)
	}
	if err != nil {
		return nil, err
	}

	if !discount.IsUsable(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrDiscountExpired, code)
	}
	return &discount, nil
}

// IncrementDiscountUsage bumps the usage counter after a discount is
// redeemed at checkout.
func IncrementDiscountUsage(code string) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("discounts")

	_, err := collection.UpdateOne(ctx,
		bson.D{{Key: "code", Value: strings.ToUpper(strings.TrimSpace(code))}},
		bson.M{"$inc": bson.M{"usage_count": 1}},
	)
	return err
}
