package checkout

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fastkart/internal/models"
)

// GatewayOrder is the payment provider's record of an amount to collect.
// Amount is in minor currency units (paise for INR).
type GatewayOrder struct {
	ID       string
	Currency string
	Amount   int64
	Status   string
}

const (
	// GatewayStatusPaid is the gateway status of a collected order.
	GatewayStatusPaid = "paid"
)

// Catalog resolves live product pricing. A nil product (with nil error)
// means the id does not resolve.
type Catalog interface {
	ProductWithImages(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CartStore reads and invalidates a user's persistent cart.
type CartStore interface {
	Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists orders. CreatePending must be atomic for the order
// and its embedded items, and must reject a duplicate idempotency key with
// ErrDuplicateSubmission.
type OrderStore interface {
	CreatePending(ctx context.Context, order *models.Order) error
	AttachGatewayOrder(ctx context.Context, id primitive.ObjectID, gatewayOrderID, orderCode string) error
	MarkPlaced(ctx context.Context, id primitive.ObjectID) error
	MarkAbandoned(ctx context.Context, id primitive.ObjectID) error
	DeletePending(ctx context.Context, id primitive.ObjectID) error
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	StalePending(ctx context.Context, olderThan time.Time) ([]models.Order, error)
}

// Gateway is the external payment provider boundary.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (GatewayOrder, error)
	FetchOrder(ctx context.Context, id string) (GatewayOrder, error)
}

// Locker is a short-lived advisory lock keyed per user, held around the
// whole read-charge-persist-clear sequence.
type Locker interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
}

// IdempotencyStore remembers finished checkout attempts and fences
// in-flight duplicates.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
