package checkout

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fastkart/internal/models"
)

type testEnv struct {
	svc     *Service
	catalog *fakeCatalog
	carts   *fakeCartStore
	orders  *fakeOrderStore
	gateway *fakeGateway
	locks   *fakeFence
	idem    *fakeFence
	userID  primitive.ObjectID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		catalog: &fakeCatalog{products: map[primitive.ObjectID]models.Product{}},
		carts:   &fakeCartStore{},
		orders:  &fakeOrderStore{},
		gateway: &fakeGateway{response: GatewayOrder{ID: "order_AbC123", Currency: "INR", Amount: 90000}},
		locks:   newFakeFence(),
		idem:    newFakeFence(),
		userID:  primitive.NewObjectID(),
	}
	env.svc = &Service{
		Catalog:  env.catalog,
		Carts:    env.carts,
		Orders:   env.orders,
		Gateway:  env.gateway,
		Locks:    env.locks,
		Idem:     env.idem,
		Tokens:   NewTokenCodec("test-secret"),
		Currency: "INR",
	}
	return env
}

func (e *testEnv) execute(t *testing.T, in Input) (Result, error) {
	t.Helper()
	in.UserID = e.userID
	if in.AddressID == "" {
		in.AddressID = "addr-1"
	}
	return e.svc.Execute(context.Background(), in)
}

func (e *testEnv) encodeToken(t *testing.T, intent models.CheckoutIntent) string {
	t.Helper()
	token, err := e.svc.Tokens.Encode(intent)
	if err != nil {
		t.Fatalf("encoding checkout token failed: %v", err)
	}
	return token
}

func TestDirectCheckoutCustomItem(t *testing.T) {
	env := newTestEnv()
	// A populated cart must stay untouched on the direct path.
	env.carts.items = []models.CartItem{{ID: "stale", CustomProduct: &models.CustomProductSnapshot{OfferPrice: 5}}}

	token := env.encodeToken(t, models.CheckoutIntent{
		IsCustomProduct: true,
		Quantity:        2,
		BasePrice:       500,
		OfferPrice:      450,
		Title:           "Hex bolt M8 custom batch",
	})

	res, err := env.execute(t, Input{Token: token})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if env.gateway.lastAmount != 90000 {
		t.Fatalf("expected gateway amount 90000, got %d", env.gateway.lastAmount)
	}
	if env.gateway.lastCurrency != "INR" {
		t.Fatalf("expected currency INR, got %q", env.gateway.lastCurrency)
	}
	if res.OrderCode != "ABC123" {
		t.Fatalf("expected order code ABC123, got %q", res.OrderCode)
	}
	if env.carts.cleared {
		t.Fatal("direct checkout must not clear the cart")
	}

	if len(env.orders.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(env.orders.orders))
	}
	order := env.orders.orders[0]
	if order.Status != models.OrderStatusPlaced {
		t.Fatalf("expected placed order, got %q", order.Status)
	}
	if order.TotalAmount != 900 {
		t.Fatalf("expected total 900, got %v", order.TotalAmount)
	}
	item := order.Items[0]
	if item.Quantity != 2 || item.OfferPrice != 900 || item.BasePrice != 1000 {
		t.Fatalf("unexpected order item %+v", item)
	}
	if item.ProductID != nil || item.CustomProduct == nil {
		t.Fatalf("custom item must have a snapshot and no product id, got %+v", item)
	}
}

func TestCartCheckoutCatalogItems(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 120, OfferPrice: 100}
	env.catalog.products[p2] = models.Product{ID: p2, BasePrice: 60, OfferPrice: 50}
	env.carts.items = []models.CartItem{
		{ID: "c1", ProductID: &p1, Quantity: 1, Color: "zinc"},
		{ID: "c2", ProductID: &p2, Quantity: 3},
	}
	env.gateway.response = GatewayOrder{ID: "order_Xy9", Currency: "INR", Amount: 25000}

	res, err := env.execute(t, Input{})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if env.gateway.lastAmount != 25000 {
		t.Fatalf("expected gateway amount 25000, got %d", env.gateway.lastAmount)
	}
	if res.OrderCode != "XY9" {
		t.Fatalf("expected order code XY9, got %q", res.OrderCode)
	}
	if !env.carts.cleared {
		t.Fatal("cart checkout must clear the cart")
	}
	if len(env.carts.items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(env.carts.items))
	}

	order := env.orders.orders[0]
	if order.TotalAmount != 250 {
		t.Fatalf("expected total 250, got %v", order.TotalAmount)
	}
	if order.Items[0].Color != "zinc" {
		t.Fatalf("expected color preserved, got %+v", order.Items[0])
	}
}

func TestCartCheckoutPricesFromLiveCatalog(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	// The catalog price changed after the item was carted; the order must
	// charge the current price.
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 200, OfferPrice: 150}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}

	if _, err := env.execute(t, Input{}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if got := env.orders.orders[0].TotalAmount; got != 150 {
		t.Fatalf("expected live catalog price 150, got %v", got)
	}
}

func TestCartCheckoutMissingProduct(t *testing.T) {
	env := newTestEnv()
	missing := primitive.NewObjectID()
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &missing, Quantity: 1}}

	_, err := env.execute(t, Input{})

	var notFound ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductNotFoundError, got %v", err)
	}
	if env.gateway.calls != 0 {
		t.Fatal("gateway must not be called when a product is missing")
	}
	if len(env.orders.orders) != 0 {
		t.Fatal("no order may be persisted when a product is missing")
	}
}

func TestEmptyCartCheckout(t *testing.T) {
	env := newTestEnv()

	_, err := env.execute(t, Input{})

	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if env.gateway.calls != 0 || len(env.orders.orders) != 0 {
		t.Fatal("empty cart must fail before any external call")
	}
}

func TestGatewayFailureLeavesNoOrder(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}
	env.gateway.err = errors.New("connection reset")

	_, err := env.execute(t, Input{})

	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if len(env.orders.orders) != 0 {
		t.Fatal("pending order must be compensated after a gateway failure")
	}
	if env.carts.cleared {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestGatewayFailureAllowsRetry(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}

	env.gateway.err = errors.New("connection reset")
	if _, err := env.execute(t, Input{IdempotencyKey: "attempt-1"}); err == nil {
		t.Fatal("expected first attempt to fail")
	}

	env.gateway.err = nil
	if _, err := env.execute(t, Input{IdempotencyKey: "attempt-1"}); err != nil {
		t.Fatalf("retry after gateway failure must succeed, got %v", err)
	}
	if env.gateway.calls != 2 {
		t.Fatalf("expected two gateway calls, got %d", env.gateway.calls)
	}
}

func TestMalformedGatewayOrderID(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}
	env.gateway.response = GatewayOrder{ID: "noseparator", Currency: "INR", Amount: 8000}

	_, err := env.execute(t, Input{})
	if err == nil {
		t.Fatal("expected an error for a gateway id without a separator")
	}
	if len(env.orders.orders) != 0 {
		t.Fatal("pending order must be compensated on a malformed gateway id")
	}
}

func TestIdempotentReplayReturnsFirstOrder(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}

	first, err := env.execute(t, Input{IdempotencyKey: "idem-1"})
	if err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	// The cart is already cleared; an exact replay must not see EmptyCart,
	// it must answer from the recorded attempt.
	second, err := env.execute(t, Input{IdempotencyKey: "idem-1"})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if first != second {
		t.Fatalf("replay returned a different result: %+v vs %+v", first, second)
	}
	if env.gateway.calls != 1 {
		t.Fatalf("replay must not create a second gateway order, got %d calls", env.gateway.calls)
	}
	if len(env.orders.orders) != 1 {
		t.Fatalf("replay must not create a second order, got %d", len(env.orders.orders))
	}
}

func TestReplayAfterIdempotencyMemoryExpiry(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}

	first, err := env.execute(t, Input{IdempotencyKey: "idem-1"})
	if err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}

	// Simulate redis TTL expiry; the unique key on the order row still
	// answers the replay.
	env.idem.memory = map[string]string{}
	env.idem.locks = map[string]bool{}

	second, err := env.execute(t, Input{IdempotencyKey: "idem-1"})
	if err != nil {
		t.Fatalf("durable replay failed: %v", err)
	}
	if second.OrderCode != first.OrderCode || second.GatewayOrderID != first.GatewayOrderID {
		t.Fatalf("durable replay mismatch: %+v vs %+v", second, first)
	}
	if env.gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", env.gateway.calls)
	}
}

func TestConcurrentCheckoutIsFenced(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}

	// Another request holds the user's checkout lock.
	env.locks.locks[scopeUserLock+":"+env.userID.Hex()] = true

	_, err := env.execute(t, Input{})
	if !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if env.gateway.calls != 0 || len(env.orders.orders) != 0 {
		t.Fatal("a fenced checkout must have no side effects")
	}
}

func TestInvalidCheckoutToken(t *testing.T) {
	env := newTestEnv()

	_, err := env.execute(t, Input{Token: "not-a-valid-token"})
	if !errors.Is(err, ErrInvalidCheckoutToken) {
		t.Fatalf("expected ErrInvalidCheckoutToken, got %v", err)
	}
	if env.gateway.calls != 0 {
		t.Fatal("an invalid token must fail before any external call")
	}
}

func TestCartCleanupFailureDoesNotFailOrder(t *testing.T) {
	env := newTestEnv()
	p1 := primitive.NewObjectID()
	env.catalog.products[p1] = models.Product{ID: p1, BasePrice: 100, OfferPrice: 80}
	env.carts.items = []models.CartItem{{ID: "c1", ProductID: &p1, Quantity: 1}}
	env.carts.clearErr = errors.New("write conflict")

	res, err := env.execute(t, Input{})
	if err != nil {
		t.Fatalf("checkout must succeed despite cart cleanup failure, got %v", err)
	}
	if res.OrderCode == "" {
		t.Fatal("expected an order code")
	}
	if env.orders.orders[0].Status != models.OrderStatusPlaced {
		t.Fatal("order must be placed despite cart cleanup failure")
	}
}

func TestCustomCartItemZeroQuantityCharged(t *testing.T) {
	env := newTestEnv()
	env.carts.items = []models.CartItem{{
		ID:       "c1",
		Quantity: 0,
		CustomProduct: &models.CustomProductSnapshot{
			Title:      "Anchor bolt custom",
			BasePrice:  40,
			OfferPrice: 30,
		},
	}}

	if _, err := env.execute(t, Input{}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	order := env.orders.orders[0]
	if order.Items[0].Quantity != 1 {
		t.Fatalf("zero quantity must be coerced to 1, got %d", order.Items[0].Quantity)
	}
	if order.TotalAmount != 30 {
		t.Fatalf("expected total 30, got %v", order.TotalAmount)
	}
}
