package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
)

func GetStaffByEmail(email string) (*models.Staff, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("staff")

	var staff models.Staff
	err := collection.FindOne(ctx, bson.D{
		{Key: "email", Value: email},
		{Key: "is_active", Value: true},
	}).Decode(&staff)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetCustomers lists active customers for the customer picker.
func GetCustomers() ([]models.Customer, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("customers")

	cursor, err := collection.Find(ctx,
		bson.D{{Key: "is_active", Value: true}},
		options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetLocations lists active store locations.
func GetLocations() ([]models.Location, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("locations")

	cursor, err := collection.Find(ctx, bson.D{{Key: "is_active", Value: true}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}
