package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fastkart/internal/models"
)

type fakeCatalog struct {
	products map[primitive.ObjectID]models.Product
}

func (f *fakeCatalog) ProductWithImages(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeCartStore struct {
	items    []models.CartItem
	itemsErr error
	clearErr error
	cleared  bool
}

func (f *fakeCartStore) Items(_ context.Context, _ primitive.ObjectID) ([]models.CartItem, error) {
	return f.items, f.itemsErr
}

func (f *fakeCartStore) Clear(_ context.Context, _ primitive.ObjectID) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = true
	f.items = nil
	return nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (f *fakeOrderStore) CreatePending(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.IdempotencyKey == order.IdempotencyKey {
			return ErrDuplicateSubmission
		}
	}
	order.ID = primitive.NewObjectID()
	order.Status = models.OrderStatusPending
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderStore) AttachGatewayOrder(_ context.Context, id primitive.ObjectID, gatewayOrderID, orderCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.find(id)
	if o == nil || o.Status != models.OrderStatusPending {
		return errors.New("order is not pending")
	}
	o.GatewayOrderID = gatewayOrderID
	o.OrderID = orderCode
	return nil
}

func (f *fakeOrderStore) MarkPlaced(_ context.Context, id primitive.ObjectID) error {
	return f.setStatus(id, models.OrderStatusPlaced)
}

func (f *fakeOrderStore) MarkAbandoned(_ context.Context, id primitive.ObjectID) error {
	return f.setStatus(id, models.OrderStatusAbandoned)
}

func (f *fakeOrderStore) setStatus(id primitive.ObjectID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.find(id)
	if o == nil {
		return errors.New("order not found")
	}
	o.Status = status
	return nil
}

func (f *fakeOrderStore) DeletePending(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, o := range f.orders {
		if o.ID == id && o.Status == models.OrderStatusPending {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeOrderStore) FindByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderStore) StalePending(_ context.Context, olderThan time.Time) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == models.OrderStatusPending && o.CreatedAt.Before(olderThan) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) find(id primitive.ObjectID) *models.Order {
	for _, o := range f.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

type fakeGateway struct {
	response GatewayOrder
	err      error
	calls    int

	lastAmount   int64
	lastCurrency string
	lastReceipt  string

	fetched map[string]GatewayOrder
	fetchErr error
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (GatewayOrder, error) {
	f.calls++
	f.lastAmount = amount
	f.lastCurrency = currency
	f.lastReceipt = receipt
	if f.err != nil {
		return GatewayOrder{}, f.err
	}
	return f.response, nil
}

func (f *fakeGateway) FetchOrder(_ context.Context, id string) (GatewayOrder, error) {
	if f.fetchErr != nil {
		return GatewayOrder{}, f.fetchErr
	}
	gw, ok := f.fetched[id]
	if !ok {
		return GatewayOrder{}, errors.New("unknown gateway order")
	}
	return gw, nil
}

// fakeFence backs both the user lock and the idempotency store.
type fakeFence struct {
	mu     sync.Mutex
	locks  map[string]bool
	memory map[string]string
}

func newFakeFence() *fakeFence {
	return &fakeFence{locks: map[string]bool{}, memory: map[string]string{}}
}

func (f *fakeFence) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeFence) Unlock(_ context.Context, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, scope+":"+key)
	return nil
}

func (f *fakeFence) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memory[scope+":"+key] = value
	return nil
}

func (f *fakeFence) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.memory[scope+":"+key]
	return v, ok, nil
}
