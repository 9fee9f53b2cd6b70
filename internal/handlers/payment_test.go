package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fastkart/internal/checkout"
)

func TestPaymentErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid token",
			err:        fmt.Errorf("%w: signature mismatch", checkout.ErrInvalidCheckoutToken),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid checkout token",
		},
		{
			name:       "empty cart",
			err:        checkout.ErrEmptyCart,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User cart is empty!",
		},
		{
			name:       "missing product",
			err:        checkout.ProductNotFoundError{ProductID: "abc"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "The request is missing or contains an invalid product ID",
		},
		{
			name:       "checkout in progress",
			err:        checkout.ErrCheckoutInProgress,
			wantStatus: http.StatusConflict,
			wantMsg:    "A checkout is already in progress",
		},
		{
			name:       "duplicate submission",
			err:        checkout.ErrDuplicateSubmission,
			wantStatus: http.StatusConflict,
			wantMsg:    "Duplicate checkout submission",
		},
		{
			name:       "gateway failure",
			err:        &checkout.GatewayError{Err: errors.New("upstream 502")},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "persistence failure",
			err:        &checkout.PersistenceError{Op: "create pending order", Err: errors.New("write concern")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := paymentErrorResponse(tt.err)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if tt.wantMsg == "" {
				// Internal faults stay opaque.
				if len(body) != 0 {
					t.Fatalf("expected empty body for internal fault, got %v", body)
				}
				return
			}
			if body["message"] != tt.wantMsg {
				t.Fatalf("message = %v, want %q", body["message"], tt.wantMsg)
			}
		})
	}
}
