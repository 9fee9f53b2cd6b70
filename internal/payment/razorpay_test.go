package payment

import (
	"encoding/json"
	"errors"
	"testing"

	"fastkart/internal/checkout"
)

func TestGatewayOrderFromResponse(t *testing.T) {
	order, err := gatewayOrderFromResponse(map[string]interface{}{
		"id":       "order_AbC123",
		"currency": "INR",
		"status":   "created",
		"amount":   float64(90000),
	})
	if err != nil {
		t.Fatalf("gatewayOrderFromResponse returned error: %v", err)
	}
	if order.ID != "order_AbC123" || order.Currency != "INR" || order.Status != "created" || order.Amount != 90000 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestGatewayOrderFromResponseMissingID(t *testing.T) {
	_, err := gatewayOrderFromResponse(map[string]interface{}{
		"currency": "INR",
		"amount":   float64(100),
	})
	var gwErr *checkout.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *checkout.GatewayError, got %v", err)
	}
}

func TestAmountFromResponse(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
	}{
		{float64(90000), 90000},
		{float64(90000.4), 90000},
		{int64(250), 250},
		{int(250), 250},
		{json.Number("12345"), 12345},
	}
	for _, tt := range tests {
		got, err := amountFromResponse(tt.in)
		if err != nil {
			t.Fatalf("amountFromResponse(%v) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("amountFromResponse(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if _, err := amountFromResponse(nil); err == nil {
		t.Fatal("expected error for missing amount")
	}
	if _, err := amountFromResponse("90000"); err == nil {
		t.Fatal("expected error for string amount")
	}
}
