package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/api/middleware"
	checkoutsvc "github.com/technova/storefront-backend/internal/checkout"
	"github.com/technova/storefront-backend/pkg/enums"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	quote     *checkoutsvc.QuoteDTO
	placed    *checkoutsvc.PlacedOrderDTO
	err       error
	sessionID string
	userID    uuid.UUID
	input     checkoutsvc.PlaceOrderInput
}

func (s *stubCheckoutService) Quote(ctx context.Context, sessionID string) (*checkoutsvc.QuoteDTO, error) {
	s.sessionID = sessionID
	return s.quote, s.err
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, sessionID string, userID uuid.UUID, input checkoutsvc.PlaceOrderInput) (*checkoutsvc.PlacedOrderDTO, error) {
	s.sessionID = sessionID
	s.userID = userID
	s.input = input
	return s.placed, s.err
}

const placeOrderBody = `{
	"shippingName": "Linh Tran",
	"shippingEmail": "linh@example.com",
	"shippingPhone": "+84 90 123 4567",
	"shippingAddress": "12 Nguyen Hue",
	"shippingCity": "Ho Chi Minh City",
	"paymentMethod": "cod"
}`

func TestCheckoutQuoteEmptyCart(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")}
	handler := CheckoutQuote(stub, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCheckoutPlaceOrderSuccess(t *testing.T) {
	userID := uuid.New()
	stub := &stubCheckoutService{placed: &checkoutsvc.PlacedOrderDTO{
		OrderID:     uuid.New(),
		OrderNumber: "TN-20250901-000042",
		Status:      enums.OrderStatusPending,
	}}
	handler := CheckoutPlaceOrder(stub, nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(placeOrderBody)), "user:"+userID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.userID != userID {
		t.Fatalf("expected user id to reach service, got %s", stub.userID)
	}
	if stub.input.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("unexpected payment method: %s", stub.input.PaymentMethod)
	}
	if stub.input.ShippingPostalCode != "" {
		t.Fatalf("expected postal code to stay optional, got %q", stub.input.ShippingPostalCode)
	}
}

func TestCheckoutPlaceOrderUnknownPaymentMethod(t *testing.T) {
	handler := CheckoutPlaceOrder(&stubCheckoutService{}, nil)

	body := strings.Replace(placeOrderBody, `"cod"`, `"crypto"`, 1)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutPlaceOrderMissingShipping(t *testing.T) {
	handler := CheckoutPlaceOrder(&stubCheckoutService{}, nil)

	body := strings.NewReader(`{"paymentMethod": "cod"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", body), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
