package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fastkart/internal/checkout"
	"fastkart/internal/models"
)

// MongoOrderStore persists orders as single documents with embedded items,
// so the order and its lines are written atomically without a transaction.
type MongoOrderStore struct {
	db *mongo.Database
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{db: db}
}

// CreatePending inserts the order in pending state. The unique index on
// idempotencyKey turns a double submission into ErrDuplicateSubmission.
func (s *MongoOrderStore) CreatePending(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.Status = models.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := s.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return checkout.ErrDuplicateSubmission
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// AttachGatewayOrder records the gateway id and derived order code on a
// still-pending order.
func (s *MongoOrderStore) AttachGatewayOrder(ctx context.Context, id primitive.ObjectID, gatewayOrderID, orderCode string) error {
	res, err := s.db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": id, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{
			"gatewayOrderId": gatewayOrderID,
			"orderId":        orderCode,
			"updatedAt":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s is not pending", id.Hex())
	}
	return nil
}

func (s *MongoOrderStore) MarkPlaced(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.OrderStatusPlaced)
}

func (s *MongoOrderStore) MarkAbandoned(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.OrderStatusAbandoned)
}

func (s *MongoOrderStore) setStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("order not found")
	}
	return nil
}

// DeletePending removes a pending order; placed orders are never deleted
// through this path.
func (s *MongoOrderStore) DeletePending(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.db.Collection("orders").DeleteOne(ctx,
		bson.M{"_id": id, "status": models.OrderStatusPending})
	return err
}

// FindByIdempotencyKey returns the order created by a previous attempt with
// the same key, or nil.
func (s *MongoOrderStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"idempotencyKey": key}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// StalePending lists pending orders created before the cutoff, oldest first.
func (s *MongoOrderStore) StalePending(ctx context.Context, olderThan time.Time) ([]models.Order, error) {
	cursor, err := s.db.Collection("orders").Find(ctx,
		bson.M{
			"status":    models.OrderStatusPending,
			"createdAt": bson.M{"$lt": olderThan},
		},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

var _ checkout.OrderStore = (*MongoOrderStore)(nil)
var _ checkout.CartStore = (*MongoCartStore)(nil)
var _ checkout.Catalog = (*MongoCatalog)(nil)
