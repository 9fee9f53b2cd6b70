package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// OrderStatusPending marks an order inserted before the payment gateway
	// call. Pending rows are either promoted to placed or swept by the
	// reconciler.
	OrderStatusPending = "pending"
	// OrderStatusPlaced marks an order whose gateway counterpart exists.
	OrderStatusPlaced = "placed"
	// OrderStatusAbandoned marks a stale pending order whose gateway
	// counterpart was never paid.
	OrderStatusAbandoned = "abandoned"
)

// OrderItem mirrors a normalized checkout line item. BasePrice and
// OfferPrice are line totals (unit price multiplied by quantity).
// ProductID is nil for custom items, CustomProduct is nil for catalog items.
type OrderItem struct {
	ProductID     *primitive.ObjectID    `bson:"productId" json:"productId"`
	Quantity      int                    `bson:"quantity" json:"quantity"`
	Color         string                 `bson:"color,omitempty" json:"color,omitempty"`
	BasePrice     float64                `bson:"basePrice" json:"basePrice"`
	OfferPrice    float64                `bson:"offerPrice" json:"offerPrice"`
	CustomProduct *CustomProductSnapshot `bson:"customProduct,omitempty" json:"customProduct,omitempty"`
}

// Order is the persisted order document. Items are embedded so the order and
// its lines are written in one atomic insert. OrderID is the human-facing
// code derived from the gateway order id once the gateway call succeeds.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	AddressID      string             `bson:"addressId" json:"addressId"`
	Items          []OrderItem        `bson:"items" json:"items"`
	TotalAmount    float64            `bson:"totalAmount" json:"totalAmount"`
	GatewayOrderID string             `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	Receipt        string             `bson:"receipt" json:"receipt"`
	IdempotencyKey string             `bson:"idempotencyKey" json:"-"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
