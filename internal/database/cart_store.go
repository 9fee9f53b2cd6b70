package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fastkart/internal/models"
)

// MongoCartStore reads and invalidates the one-cart-per-user documents.
type MongoCartStore struct {
	db *mongo.Database
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{db: db}
}

// Items returns the user's cart items; a missing cart yields nil items.
func (s *MongoCartStore) Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	var cart models.Cart
	err := s.db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Clear deletes the user's cart document, items included. Deleting an
// already-absent cart is not an error.
func (s *MongoCartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.db.Collection("carts").DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
