package controllers

import (
	"net/http"
	"strings"

	"github.com/technova/storefront-backend/api/middleware"
	"github.com/technova/storefront-backend/api/responses"
	"github.com/technova/storefront-backend/api/validators"
	checkoutsvc "github.com/technova/storefront-backend/internal/checkout"
	"github.com/technova/storefront-backend/pkg/enums"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/logger"
)

type placeOrderRequest struct {
	ShippingName       string  `json:"shippingName" validate:"required,max=120"`
	ShippingEmail      string  `json:"shippingEmail" validate:"required,email"`
	ShippingPhone      string  `json:"shippingPhone" validate:"required,max=30"`
	ShippingAddress    string  `json:"shippingAddress" validate:"required,max=300"`
	ShippingCity       string  `json:"shippingCity" validate:"required,max=120"`
	ShippingPostalCode string  `json:"shippingPostalCode" validate:"omitempty,max=20"`
	PaymentMethod      string  `json:"paymentMethod" validate:"required"`
	Notes              *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// CheckoutQuote prices the current cart with shipping and tax.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		quote, err := svc.Quote(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlaceOrder turns the cart into an order for the signed-in shopper.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := checkoutsvc.PlaceOrderInput{
			ShippingName:       payload.ShippingName,
			ShippingEmail:      payload.ShippingEmail,
			ShippingPhone:      payload.ShippingPhone,
			ShippingAddress:    payload.ShippingAddress,
			ShippingCity:       payload.ShippingCity,
			ShippingPostalCode: payload.ShippingPostalCode,
			PaymentMethod:      method,
			Notes:              payload.Notes,
		}

		order, err := svc.PlaceOrder(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			input,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
