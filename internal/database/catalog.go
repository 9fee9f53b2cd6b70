package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fastkart/internal/models"
)

// MongoCatalog reads live product pricing from the products collection.
type MongoCatalog struct {
	db *mongo.Database
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{db: db}
}

// ProductWithImages returns the current product document, or nil when the
// id does not resolve (deleted products included).
func (c *MongoCatalog) ProductWithImages(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := c.db.Collection("products").FindOne(ctx, bson.M{
		"_id":       id,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	product.IsOnSale = product.OnSale()
	return &product, nil
}
