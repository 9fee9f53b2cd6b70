package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fastkart/internal/models"
)

const (
	scopeUserLock = "checkout-lock"
	scopePayment  = "payment"
)

// Service runs the checkout pipeline: resolve the source, normalize and
// price the line items, register the amount with the payment gateway and
// persist the order, then invalidate the cart when it was the source.
//
// The order row is inserted as "pending" before the gateway call and
// promoted afterwards, so a charge can never exist without a durable local
// record; whatever a crash leaves behind is swept by the Reconciler.
type Service struct {
	Catalog Catalog
	Carts   CartStore
	Orders  OrderStore
	Gateway Gateway
	Locks   Locker
	Idem    IdempotencyStore
	Tokens  *TokenCodec

	Currency       string
	GatewayTimeout time.Duration
}

// Input is one checkout attempt. Token is the raw checkout cookie value
// ("" means cart checkout). IdempotencyKey is the client-supplied key; when
// empty a deterministic fallback is derived from the attempt itself.
type Input struct {
	UserID         primitive.ObjectID
	AddressID      string
	Token          string
	IdempotencyKey string
}

// Result mirrors the success response contract: the gateway order id, its
// currency and minor-unit amount, and the derived local order code.
type Result struct {
	GatewayOrderID string `json:"id"`
	Currency       string `json:"currency"`
	Amount         int64  `json:"amount"`
	OrderCode      string `json:"orderId"`
}

func (s *Service) Execute(ctx context.Context, in Input) (Result, error) {
	source, err := ResolveSource(s.Tokens, in.Token)
	if err != nil {
		return Result{}, err
	}

	// A client-keyed replay is answered before anything else runs: on a
	// replay the cart is typically already cleared, so the attempt can no
	// longer be re-normalized.
	if in.IdempotencyKey != "" {
		if res, ok, err := s.recallResult(ctx, in.UserID, in.IdempotencyKey); err != nil {
			return Result{}, err
		} else if ok {
			return res, nil
		}
	}

	locked, err := s.Locks.TryLock(ctx, scopeUserLock, in.UserID.Hex())
	if err != nil {
		return Result{}, err
	}
	if !locked {
		return Result{}, ErrCheckoutInProgress
	}
	defer func() {
		if err := s.Locks.Unlock(ctx, scopeUserLock, in.UserID.Hex()); err != nil {
			log.Println("[PAYMENT] [WARN] checkout lock release failed:", err)
		}
	}()

	items, err := s.normalizeSource(ctx, in.UserID, source)
	if err != nil {
		return Result{}, err
	}

	key := in.IdempotencyKey
	if key == "" {
		// A keyless retry hashes to the same fallback key, so it is still
		// answered from the first attempt.
		key = fallbackIdempotencyKey(in, items)
		if res, ok, err := s.recallResult(ctx, in.UserID, key); err != nil {
			return Result{}, err
		} else if ok {
			return res, nil
		}
	}

	fenced, err := s.Idem.TryLock(ctx, scopePayment, idemKey(in.UserID, key))
	if err != nil {
		return Result{}, err
	}
	if !fenced {
		return Result{}, ErrDuplicateSubmission
	}

	res, err := s.run(ctx, in, source, key, items)
	if err != nil {
		// Release the fence so a genuine retry of a failed attempt can run.
		if uerr := s.Idem.Unlock(ctx, scopePayment, idemKey(in.UserID, key)); uerr != nil {
			log.Println("[PAYMENT] [WARN] idempotency fence release failed:", uerr)
		}
		return Result{}, err
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, in Input, source Source, key string, items []LineItem) (Result, error) {
	total := orderTotal(items)

	order := &models.Order{
		UserID:         in.UserID,
		AddressID:      in.AddressID,
		Items:          orderItemsFromLines(items),
		TotalAmount:    total,
		Receipt:        uuid.NewString(),
		IdempotencyKey: key,
	}
	if err := s.Orders.CreatePending(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return Result{}, err
		}
		return Result{}, &PersistenceError{Op: "create pending", Err: err}
	}

	gatewayCtx := ctx
	if s.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		gatewayCtx, cancel = context.WithTimeout(ctx, s.GatewayTimeout)
		defer cancel()
	}
	gw, err := s.Gateway.CreateOrder(gatewayCtx, gatewayAmount(total), s.Currency, order.Receipt)
	if err != nil {
		s.compensatePending(ctx, order.ID)
		var gerr *GatewayError
		if errors.As(err, &gerr) {
			return Result{}, err
		}
		return Result{}, &GatewayError{Err: err}
	}

	code, err := deriveOrderCode(gw.ID)
	if err != nil {
		s.compensatePending(ctx, order.ID)
		return Result{}, err
	}

	if err := s.Orders.AttachGatewayOrder(ctx, order.ID, gw.ID, code); err != nil {
		// The gateway order exists but nothing was charged yet; the stale
		// pending row is swept by the reconciler.
		return Result{}, &PersistenceError{Op: "attach gateway order", Err: err}
	}
	if err := s.Orders.MarkPlaced(ctx, order.ID); err != nil {
		return Result{}, &PersistenceError{Op: "mark placed", Err: err}
	}

	// Cart cleanup is best effort and only on the cart path; a paid order
	// is never failed over it.
	if source.Kind == SourceCart {
		if err := s.Carts.Clear(ctx, in.UserID); err != nil {
			log.Println("[PAYMENT] [WARN] cart cleanup failed:", err)
		}
	}

	res := Result{
		GatewayOrderID: gw.ID,
		Currency:       gw.Currency,
		Amount:         gw.Amount,
		OrderCode:      code,
	}
	s.rememberResult(ctx, in.UserID, key, res)
	return res, nil
}

func (s *Service) normalizeSource(ctx context.Context, userID primitive.ObjectID, source Source) ([]LineItem, error) {
	switch source.Kind {
	case SourceDirect:
		item, err := s.normalizeIntent(ctx, source.Intent)
		if err != nil {
			return nil, err
		}
		return []LineItem{item}, nil
	case SourceCart:
		cartItems, err := s.Carts.Items(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(cartItems) == 0 {
			return nil, ErrEmptyCart
		}
		return s.normalizeCartItems(ctx, cartItems)
	default:
		return nil, fmt.Errorf("unknown checkout source kind %d", source.Kind)
	}
}

// recallResult answers a replayed attempt. The idempotency store remembers
// the full response; the unique key on the order row is the durable
// fallback once that memory has expired.
func (s *Service) recallResult(ctx context.Context, userID primitive.ObjectID, key string) (Result, bool, error) {
	if raw, ok, err := s.Idem.Recall(ctx, scopePayment, idemKey(userID, key)); err == nil && ok {
		var res Result
		if jerr := json.Unmarshal([]byte(raw), &res); jerr == nil && res.GatewayOrderID != "" {
			return res, true, nil
		}
	}

	order, err := s.Orders.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return Result{}, false, &PersistenceError{Op: "find by idempotency key", Err: err}
	}
	if order == nil {
		return Result{}, false, nil
	}
	// The unique key is global; a key first used by another user can
	// neither be replayed nor inserted again.
	if order.UserID != userID {
		return Result{}, false, ErrDuplicateSubmission
	}
	if order.Status != models.OrderStatusPlaced {
		return Result{}, false, ErrDuplicateSubmission
	}

	return Result{
		GatewayOrderID: order.GatewayOrderID,
		Currency:       s.Currency,
		Amount:         gatewayAmount(order.TotalAmount),
		OrderCode:      order.OrderID,
	}, true, nil
}

func (s *Service) rememberResult(ctx context.Context, userID primitive.ObjectID, key string, res Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.Idem.Remember(ctx, scopePayment, idemKey(userID, key), string(raw)); err != nil {
		log.Println("[PAYMENT] [WARN] idempotency remember failed:", err)
	}
}

func (s *Service) compensatePending(ctx context.Context, id primitive.ObjectID) {
	if err := s.Orders.DeletePending(ctx, id); err != nil {
		log.Println("[PAYMENT] [WARN] pending order cleanup failed:", err)
	}
}

func idemKey(userID primitive.ObjectID, key string) string {
	return userID.Hex() + ":" + key
}

// fallbackIdempotencyKey hashes the attempt itself when the client sends no
// key: the same user submitting the same address and the same normalized
// items within one time bucket maps to the same key, so a blind network
// retry cannot double-charge, while a deliberate identical purchase later
// still goes through.
func fallbackIdempotencyKey(in Input, items []LineItem) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(time.Now().Truncate(15*time.Minute).Unix(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(in.UserID.Hex()))
	h.Write([]byte{0})
	h.Write([]byte(in.AddressID))
	h.Write([]byte{0})
	h.Write([]byte(in.Token))
	for _, it := range items {
		h.Write([]byte{0})
		if it.ProductID != nil {
			h.Write([]byte(it.ProductID.Hex()))
		} else if it.Custom != nil {
			h.Write([]byte(it.Custom.Title))
		}
		h.Write([]byte(strconv.Itoa(it.Quantity)))
		h.Write([]byte(strconv.FormatFloat(it.LineOfferPrice, 'f', -1, 64)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
