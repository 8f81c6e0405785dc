package compliance

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/outbox/payloads"
)

// InitialHold decides a new shipment's hold state. Dealer-bound shipments
// whose dealer is not yet on file enter the pending state with the start
// timestamp stamped; everything else ships without a tracked hold.
func InitialHold(outcome enums.FulfillmentOutcome, dealerStatus enums.FFLDirectoryStatus, now time.Time) (enums.HoldState, *time.Time) {
	if !outcome.ToFFL() {
		return enums.HoldNone, nil
	}
	if dealerStatus.Verified() {
		return enums.HoldNone, nil
	}
	started := now
	return enums.HoldPendingFFL, &started
}

type holdMetrics interface {
	IncHoldTransition(state string)
}

// Tracker drives hold transitions for shipments awaiting FFL verification.
type Tracker struct {
	db        TxRunner
	repo      Repository
	directory DealerDirectory
	events    EventEmitter
	logg      *logger.Logger
	metrics   holdMetrics
}

// NewTracker validates dependencies and builds the tracker.
func NewTracker(db TxRunner, repo Repository, directory DealerDirectory, events EventEmitter, logg *logger.Logger, metrics holdMetrics) (*Tracker, error) {
	if db == nil {
		return nil, stdErrors.New("tx runner is required")
	}
	if repo == nil {
		return nil, stdErrors.New("repository is required")
	}
	if directory == nil {
		return nil, stdErrors.New("dealer directory is required")
	}
	if events == nil {
		return nil, stdErrors.New("event emitter is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &Tracker{db: db, repo: repo, directory: directory, events: events, logg: logg, metrics: metrics}, nil
}

// Clear moves a pending hold to cleared. It requires the dealer to be on
// file and the caller's version to still be current; a stale version is
// rejected loudly so a concurrent administrator's action is never
// overwritten.
func (t *Tracker) Clear(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, actor *outbox.ActorRef) (*HoldShipment, error) {
	shipment, err := t.repo.FindHoldShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := requirePendingHold(shipment); err != nil {
		return nil, err
	}
	if shipment.FFLDealerID == nil {
		return nil, errors.New(errors.CodeStateConflict, "shipment has no dealer destination")
	}

	status, err := t.directory.DealerStatus(ctx, *shipment.FFLDealerID)
	if err != nil {
		return nil, err
	}
	if !status.Verified() {
		return nil, errors.New(errors.CodeStateConflict,
			fmt.Sprintf("dealer is %s, hold can only clear once the dealer is on file", status))
	}

	now := time.Now().UTC()
	err = t.transition(ctx, shipment, expectedVersion, enums.HoldCleared, map[string]any{
		"hold_state":      enums.HoldCleared,
		"hold_cleared_at": now,
	}, enums.EventHoldCleared, actor, "")
	if err != nil {
		return nil, err
	}

	shipment.HoldState = enums.HoldCleared
	shipment.HoldClearedAt = &now
	shipment.Version = expectedVersion + 1
	return shipment, nil
}

// Reject moves a pending hold to the terminal rejected state. The shipment
// cannot ship afterwards; a new shipment against a different dealer is a
// higher-level reorder concern.
func (t *Tracker) Reject(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, reason string, actor *outbox.ActorRef) (*HoldShipment, error) {
	shipment, err := t.repo.FindHoldShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := requirePendingHold(shipment); err != nil {
		return nil, err
	}

	err = t.transition(ctx, shipment, expectedVersion, enums.HoldRejected, map[string]any{
		"hold_state": enums.HoldRejected,
	}, enums.EventHoldRejected, actor, reason)
	if err != nil {
		return nil, err
	}

	shipment.HoldState = enums.HoldRejected
	shipment.Version = expectedVersion + 1
	return shipment, nil
}

func requirePendingHold(shipment *HoldShipment) error {
	switch shipment.HoldState {
	case enums.HoldPendingFFL:
		return nil
	case enums.HoldRejected:
		return errors.New(errors.CodeStateConflict, "hold is rejected and terminal")
	default:
		return errors.New(errors.CodeStateConflict,
			fmt.Sprintf("shipment hold is %s, expected %s", shipment.HoldState, enums.HoldPendingFFL))
	}
}

func (t *Tracker) transition(
	ctx context.Context,
	shipment *HoldShipment,
	expectedVersion int,
	target enums.HoldState,
	updates map[string]any,
	eventType enums.OutboxEventType,
	actor *outbox.ActorRef,
	reason string,
) error {
	err := t.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := t.repo.WithTx(tx).TransitionHold(ctx, shipment.ID, expectedVersion, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.New(errors.CodeStaleHoldState,
				fmt.Sprintf("shipment version %d is stale", expectedVersion))
		}

		payload := payloads.HoldEvent{
			ShipmentID:    shipment.ID,
			OrderID:       shipment.OrderID,
			DisplayNumber: models.DisplayNumber(shipment.BaseNumber, shipment.Suffix),
			HoldState:     target.String(),
			HoldStartedAt: shipment.HoldStartedAt,
			Reason:        reason,
		}
		if clearedAt, ok := updates["hold_cleared_at"].(time.Time); ok {
			payload.HoldClearedAt = &clearedAt
		}
		return t.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         actor,
			Data:          payload,
			Version:       1,
		})
	})
	if err != nil {
		return err
	}

	if t.metrics != nil {
		t.metrics.IncHoldTransition(target.String())
	}
	logCtx := t.logg.WithShipmentID(ctx, shipment.ID.String())
	logCtx = t.logg.WithOrderNumber(logCtx, shipment.BaseNumber)
	t.logg.Info(logCtx, fmt.Sprintf("shipment hold %s", target))
	return nil
}
