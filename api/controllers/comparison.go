package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/technova/storefront-backend/api/middleware"
	"github.com/technova/storefront-backend/api/responses"
	"github.com/technova/storefront-backend/api/validators"
	comparisonsvc "github.com/technova/storefront-backend/internal/comparison"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/logger"
)

type comparisonAddRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

// ComparisonFetch returns the shopper's comparison tray.
func ComparisonFetch(svc comparisonsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison service unavailable"))
			return
		}

		tray, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tray)
	}
}

// ComparisonAdd puts a product in the tray. Full or duplicate trays return
// the unchanged tray rather than an error.
func ComparisonAdd(svc comparisonsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison service unavailable"))
			return
		}

		var payload comparisonAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tray, err := svc.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tray)
	}
}

// ComparisonRemove drops a product from the tray.
func ComparisonRemove(svc comparisonsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tray, err := svc.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tray)
	}
}

// ComparisonClear empties the tray.
func ComparisonClear(svc comparisonsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison service unavailable"))
			return
		}

		tray, err := svc.Clear(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tray)
	}
}

// ComparisonPanel opens, closes, or toggles the comparison panel.
func ComparisonPanel(svc comparisonsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison service unavailable"))
			return
		}

		var payload panelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tray, err := svc.SetPanel(r.Context(), middleware.SessionIDFromContext(r.Context()), comparisonsvc.PanelAction(payload.Action))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tray)
	}
}
