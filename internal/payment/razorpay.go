package payment

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	razorpay "github.com/razorpay/razorpay-go"

	"fastkart/internal/checkout"
)

// RazorpayGateway registers payment orders with Razorpay. Amounts are in
// minor currency units (paise); payment capture is automatic.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder registers an amount to collect and returns the gateway's
// order record. The SDK has no context support; ctx only bounds the
// caller's wait through the surrounding deadline.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (checkout.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: err}
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: err}
	}

	return gatewayOrderFromResponse(body)
}

// FetchOrder reads the current state of a gateway order, used by the
// reconciler to decide the fate of stale pending orders.
func (g *RazorpayGateway) FetchOrder(ctx context.Context, id string) (checkout.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: err}
	}

	body, err := g.client.Order.Fetch(id, nil, nil)
	if err != nil {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: err}
	}

	return gatewayOrderFromResponse(body)
}

func gatewayOrderFromResponse(body map[string]interface{}) (checkout.GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: errors.New("response missing order id")}
	}

	currency, _ := body["currency"].(string)
	status, _ := body["status"].(string)

	amount, err := amountFromResponse(body["amount"])
	if err != nil {
		return checkout.GatewayOrder{}, &checkout.GatewayError{Err: err}
	}

	return checkout.GatewayOrder{
		ID:       id,
		Currency: currency,
		Amount:   amount,
		Status:   status,
	}, nil
}

// amountFromResponse tolerates the numeric types the SDK's JSON decoding
// can produce for the minor-unit amount.
func amountFromResponse(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(math.Round(n)), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, errors.New("response missing order amount")
	}
}

var _ checkout.Gateway = (*RazorpayGateway)(nil)
