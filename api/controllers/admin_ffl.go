package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/api/responses"
	"github.com/ridgelinearms/armory-backend/api/validators"
	"github.com/ridgelinearms/armory-backend/internal/ffl"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	pkgerrors "github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
	"github.com/ridgelinearms/armory-backend/pkg/types"
)

type dealerDirectory interface {
	CreateDealer(ctx context.Context, dealer *models.FFLDealer) (*models.FFLDealer, error)
	FindDealer(ctx context.Context, dealerID uuid.UUID) (*models.FFLDealer, error)
	UpdateStatus(ctx context.Context, dealerID uuid.UUID, status enums.FFLDirectoryStatus) error
	ListDealers(ctx context.Context, status *enums.FFLDirectoryStatus, params pagination.Params) (*ffl.DealerList, error)
}

type createDealerRequest struct {
	LicenseNumber string         `json:"licenseNumber" validate:"required"`
	BusinessName  string         `json:"businessName" validate:"required"`
	Status        *string        `json:"status,omitempty"`
	Address       *types.Address `json:"address,omitempty"`
}

type updateDealerStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminCreateDealer registers a transfer dealer in the directory. New
// dealers default to not-on-file, which keeps their shipments on hold until
// staff verify the license.
func AdminCreateDealer(directory dealerDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if directory == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer directory unavailable"))
			return
		}

		var payload createDealerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer := &models.FFLDealer{
			LicenseNumber: strings.TrimSpace(payload.LicenseNumber),
			BusinessName:  strings.TrimSpace(payload.BusinessName),
			Address:       payload.Address,
		}
		if payload.Status != nil {
			status, err := enums.ParseFFLDirectoryStatus(strings.TrimSpace(*payload.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid directory status"))
				return
			}
			dealer.Status = status
		}

		created, err := directory.CreateDealer(r.Context(), dealer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminGetDealer returns one directory entry.
func AdminGetDealer(directory dealerDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if directory == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer directory unavailable"))
			return
		}

		dealerID, err := parseDealerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := directory.FindDealer(r.Context(), dealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dealer)
	}
}

// AdminUpdateDealerStatus moves a dealer between directory states. Existing
// holds are not retroactively cleared; staff still release each shipment.
func AdminUpdateDealerStatus(directory dealerDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if directory == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer directory unavailable"))
			return
		}

		dealerID, err := parseDealerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDealerStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseFFLDirectoryStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid directory status"))
			return
		}

		if err := directory.UpdateStatus(r.Context(), dealerID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := directory.FindDealer(r.Context(), dealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dealer)
	}
}

// AdminListDealers pages through the directory, optionally filtered by
// status.
func AdminListDealers(directory dealerDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if directory == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer directory unavailable"))
			return
		}

		var status *enums.FFLDirectoryStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseFFLDirectoryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid directory status"))
				return
			}
			status = &parsed
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := directory.ListDealers(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseDealerID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "dealerId"))
	dealerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer id")
	}
	return dealerID, nil
}
