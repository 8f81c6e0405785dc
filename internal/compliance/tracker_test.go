package compliance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubHoldsRepo struct {
	shipment *HoldShipment

	transitionRows    int64
	transitionCalls   int
	transitionUpdates map[string]any
	transitionVersion int
}

func (s *stubHoldsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubHoldsRepo) FindHoldShipment(ctx context.Context, shipmentID uuid.UUID) (*HoldShipment, error) {
	if s.shipment == nil {
		return nil, errors.New(errors.CodeNotFound, "shipment not found")
	}
	copied := *s.shipment
	return &copied, nil
}

func (s *stubHoldsRepo) TransitionHold(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, updates map[string]any) (int64, error) {
	s.transitionCalls++
	s.transitionUpdates = updates
	s.transitionVersion = expectedVersion
	return s.transitionRows, nil
}

func (s *stubHoldsRepo) ListByHoldState(ctx context.Context, state enums.HoldState, params pagination.Params) (*HoldQueueList, error) {
	return &HoldQueueList{}, nil
}

type stubDirectory struct {
	status enums.FFLDirectoryStatus
}

func (s *stubDirectory) DealerStatus(ctx context.Context, dealerID uuid.UUID) (enums.FFLDirectoryStatus, error) {
	return s.status, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubHoldMetrics struct {
	transitions []string
}

func (s *stubHoldMetrics) IncHoldTransition(state string) {
	s.transitions = append(s.transitions, state)
}

func pendingShipment() *HoldShipment {
	dealer := uuid.New()
	started := time.Now().Add(-time.Hour)
	return &HoldShipment{
		Shipment: models.Shipment{
			ID:            uuid.New(),
			OrderID:       uuid.New(),
			Suffix:        "A",
			Outcome:       enums.OutcomeIHToFFL,
			FFLDealerID:   &dealer,
			HoldState:     enums.HoldPendingFFL,
			HoldStartedAt: &started,
			Version:       3,
		},
		BaseNumber: 100123,
	}
}

func newTestTracker(t *testing.T, repo *stubHoldsRepo, directory *stubDirectory) (*Tracker, *stubEmitter, *stubHoldMetrics) {
	t.Helper()
	emitter := &stubEmitter{}
	metrics := &stubHoldMetrics{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: &bytes.Buffer{}})
	tracker, err := NewTracker(stubTxRunner{}, repo, directory, emitter, logg, metrics)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tracker, emitter, metrics
}

func TestInitialHold(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name        string
		outcome     enums.FulfillmentOutcome
		status      enums.FFLDirectoryStatus
		wantState   enums.HoldState
		wantStarted bool
	}{
		{"customer destination", enums.OutcomeDSToCustomer, enums.FFLNotOnFile, enums.HoldNone, false},
		{"dealer not on file", enums.OutcomeDSToFFL, enums.FFLNotOnFile, enums.HoldPendingFFL, true},
		{"dealer on file", enums.OutcomeIHToFFL, enums.FFLOnFile, enums.HoldNone, false},
		{"dealer preferred", enums.OutcomeIHToFFL, enums.FFLPreferred, enums.HoldNone, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, started := InitialHold(tc.outcome, tc.status, now)
			if state != tc.wantState {
				t.Fatalf("expected state %s, got %s", tc.wantState, state)
			}
			if tc.wantStarted && (started == nil || !started.Equal(now)) {
				t.Fatalf("expected holdStartedAt stamped")
			}
			if !tc.wantStarted && started != nil {
				t.Fatalf("expected no holdStartedAt")
			}
		})
	}
}

func TestClearPendingHold(t *testing.T) {
	repo := &stubHoldsRepo{shipment: pendingShipment(), transitionRows: 1}
	tracker, emitter, metrics := newTestTracker(t, repo, &stubDirectory{status: enums.FFLOnFile})

	updated, err := tracker.Clear(context.Background(), repo.shipment.ID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.HoldState != enums.HoldCleared {
		t.Fatalf("expected cleared, got %s", updated.HoldState)
	}
	if updated.HoldClearedAt == nil {
		t.Fatalf("expected holdClearedAt stamped")
	}
	if updated.Version != 4 {
		t.Fatalf("expected version bump to 4, got %d", updated.Version)
	}
	if repo.transitionVersion != 3 {
		t.Fatalf("expected optimistic check against version 3, got %d", repo.transitionVersion)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventHoldCleared {
		t.Fatalf("expected one hold_cleared event, got %+v", emitter.events)
	}
	if len(metrics.transitions) != 1 || metrics.transitions[0] != "cleared" {
		t.Fatalf("expected cleared metric, got %v", metrics.transitions)
	}
}

func TestClearRequiresVerifiedDealer(t *testing.T) {
	repo := &stubHoldsRepo{shipment: pendingShipment(), transitionRows: 1}
	tracker, emitter, _ := newTestTracker(t, repo, &stubDirectory{status: enums.FFLNotOnFile})

	_, err := tracker.Clear(context.Background(), repo.shipment.ID, 3, nil)
	if !errors.HasCode(err, errors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if repo.transitionCalls != 0 {
		t.Fatalf("no transition may run for an unverified dealer")
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no event may be emitted")
	}
}

func TestClearRejectsNonPendingHold(t *testing.T) {
	shipment := pendingShipment()
	shipment.HoldState = enums.HoldNone
	repo := &stubHoldsRepo{shipment: shipment, transitionRows: 1}
	tracker, _, _ := newTestTracker(t, repo, &stubDirectory{status: enums.FFLOnFile})

	_, err := tracker.Clear(context.Background(), shipment.ID, 3, nil)
	if !errors.HasCode(err, errors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestRejectedHoldIsTerminal(t *testing.T) {
	shipment := pendingShipment()
	shipment.HoldState = enums.HoldRejected
	repo := &stubHoldsRepo{shipment: shipment, transitionRows: 1}
	tracker, _, _ := newTestTracker(t, repo, &stubDirectory{status: enums.FFLOnFile})

	_, err := tracker.Clear(context.Background(), shipment.ID, 3, nil)
	if !errors.HasCode(err, errors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT for terminal hold, got %v", err)
	}
	_, err = tracker.Reject(context.Background(), shipment.ID, 3, "closed", nil)
	if !errors.HasCode(err, errors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT for terminal hold, got %v", err)
	}
}

func TestClearStaleVersionFailsLoudly(t *testing.T) {
	repo := &stubHoldsRepo{shipment: pendingShipment(), transitionRows: 0}
	tracker, emitter, metrics := newTestTracker(t, repo, &stubDirectory{status: enums.FFLOnFile})

	_, err := tracker.Clear(context.Background(), repo.shipment.ID, 2, nil)
	if !errors.HasCode(err, errors.CodeStaleHoldState) {
		t.Fatalf("expected STALE_HOLD_STATE, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("stale write must not emit events")
	}
	if len(metrics.transitions) != 0 {
		t.Fatalf("stale write must not record a transition")
	}
}

func TestRejectPendingHold(t *testing.T) {
	repo := &stubHoldsRepo{shipment: pendingShipment(), transitionRows: 1}
	tracker, emitter, metrics := newTestTracker(t, repo, &stubDirectory{status: enums.FFLNotOnFile})

	updated, err := tracker.Reject(context.Background(), repo.shipment.ID, 3, "dealer closed", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.HoldState != enums.HoldRejected {
		t.Fatalf("expected rejected, got %s", updated.HoldState)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventHoldRejected {
		t.Fatalf("expected one hold_rejected event, got %+v", emitter.events)
	}
	if len(metrics.transitions) != 1 || metrics.transitions[0] != "rejected" {
		t.Fatalf("expected rejected metric, got %v", metrics.transitions)
	}
}
