package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a single entry in a user's persistent cart. Exactly one of
// ProductID and CustomProduct is set: catalog items carry a product
// reference, custom items carry a full price-and-spec snapshot.
type CartItem struct {
	ID            string                 `bson:"id" json:"id"`
	ProductID     *primitive.ObjectID    `bson:"productId,omitempty" json:"productId,omitempty"`
	Quantity      int                    `bson:"quantity" json:"quantity"`
	Color         string                 `bson:"color,omitempty" json:"color,omitempty"`
	CustomProduct *CustomProductSnapshot `bson:"customProduct,omitempty" json:"customProduct,omitempty"`
}

// Cart is the persistent cart document, one per user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
