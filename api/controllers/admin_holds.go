package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/api/middleware"
	"github.com/ridgelinearms/armory-backend/api/responses"
	"github.com/ridgelinearms/armory-backend/api/validators"
	"github.com/ridgelinearms/armory-backend/internal/compliance"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	pkgerrors "github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type holdQueue interface {
	ListByHoldState(ctx context.Context, state enums.HoldState, params pagination.Params) (*compliance.HoldQueueList, error)
}

type holdTracker interface {
	Clear(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, actor *outbox.ActorRef) (*compliance.HoldShipment, error)
	Reject(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, reason string, actor *outbox.ActorRef) (*compliance.HoldShipment, error)
}

type clearHoldRequest struct {
	ExpectedVersion int `json:"expectedVersion" validate:"required,gt=0"`
}

type rejectHoldRequest struct {
	ExpectedVersion int    `json:"expectedVersion" validate:"required,gt=0"`
	Reason          string `json:"reason" validate:"required"`
}

// AdminHoldQueue lists shipments awaiting FFL verification, oldest context
// first via cursor pagination. A `state` query param lets staff review
// cleared or rejected history too.
func AdminHoldQueue(repo holdQueue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hold queue unavailable"))
			return
		}

		state := enums.HoldPendingFFL
		if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
			parsed, err := enums.ParseHoldState(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid hold state"))
				return
			}
			state = parsed
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListByHoldState(r.Context(), state, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminClearHold releases a pending hold after staff verified the dealer's
// license. The caller echoes the shipment version it saw; a stale version is
// rejected rather than silently double-applied.
func AdminClearHold(tracker holdTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hold tracker unavailable"))
			return
		}

		shipmentID, err := parseShipmentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := staffActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clearHoldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := tracker.Clear(r.Context(), shipmentID, payload.ExpectedVersion, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// AdminRejectHold moves a pending hold to its terminal rejected state.
func AdminRejectHold(tracker holdTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hold tracker unavailable"))
			return
		}

		shipmentID, err := parseShipmentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := staffActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectHoldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := tracker.Reject(r.Context(), shipmentID, payload.ExpectedVersion, strings.TrimSpace(payload.Reason), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

func parseShipmentID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "shipmentId"))
	shipmentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment id")
	}
	return shipmentID, nil
}

func staffActor(r *http.Request) (*outbox.ActorRef, error) {
	actorID, err := callerID(r)
	if err != nil {
		return nil, err
	}
	return &outbox.ActorRef{
		UserID: actorID,
		Role:   middleware.RoleFromContext(r.Context()).String(),
	}, nil
}
