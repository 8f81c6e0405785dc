package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/api/middleware"
	"github.com/ridgelinearms/armory-backend/api/responses"
	"github.com/ridgelinearms/armory-backend/api/validators"
	"github.com/ridgelinearms/armory-backend/internal/orders"
	pkgerrors "github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/types"
)

type checkoutLineRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	FFLDealerID *string `json:"fflDealerId,omitempty"`
}

type checkoutRequest struct {
	PaymentTxnID    string                `json:"paymentTxnId" validate:"required"`
	ShippingAddress *types.Address        `json:"shippingAddress,omitempty"`
	Lines           []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// Checkout finalizes an order for the authenticated customer. Payment has
// already happened upstream; the processor's transaction id arrives in the
// payload and is stored as-is.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		customerID, err := uuid.Parse(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCheckoutInput(customerID, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Finalize(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

func (c checkoutRequest) toCheckoutInput(customerID uuid.UUID, r *http.Request) (orders.CheckoutInput, error) {
	lines := make([]orders.CheckoutLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		var dealerID *uuid.UUID
		if line.FFLDealerID != nil && strings.TrimSpace(*line.FFLDealerID) != "" {
			parsed, err := uuid.Parse(strings.TrimSpace(*line.FFLDealerID))
			if err != nil {
				return orders.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ffl dealer id")
			}
			dealerID = &parsed
		}
		lines = append(lines, orders.CheckoutLine{
			SKU:         strings.TrimSpace(line.SKU),
			Quantity:    line.Quantity,
			FFLDealerID: dealerID,
		})
	}

	return orders.CheckoutInput{
		CustomerID:      customerID,
		MembershipTier:  middleware.TierFromContext(r.Context()),
		PaymentTxnID:    strings.TrimSpace(c.PaymentTxnID),
		ShippingAddress: c.ShippingAddress,
		Lines:           lines,
	}, nil
}
