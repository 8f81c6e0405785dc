package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ridgelinearms/armory-backend/internal/compliance"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	pkgerrors "github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

type stubHoldQueue struct {
	list     *compliance.HoldQueueList
	err      error
	gotState enums.HoldState
}

func (s *stubHoldQueue) ListByHoldState(ctx context.Context, state enums.HoldState, params pagination.Params) (*compliance.HoldQueueList, error) {
	s.gotState = state
	return s.list, s.err
}

type stubHoldTracker struct {
	shipment *compliance.HoldShipment
	err      error

	gotShipmentID uuid.UUID
	gotVersion    int
	gotReason     string
	gotActor      *outbox.ActorRef
}

func (s *stubHoldTracker) Clear(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, actor *outbox.ActorRef) (*compliance.HoldShipment, error) {
	s.gotShipmentID = shipmentID
	s.gotVersion = expectedVersion
	s.gotActor = actor
	return s.shipment, s.err
}

func (s *stubHoldTracker) Reject(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, reason string, actor *outbox.ActorRef) (*compliance.HoldShipment, error) {
	s.gotShipmentID = shipmentID
	s.gotVersion = expectedVersion
	s.gotReason = reason
	s.gotActor = actor
	return s.shipment, s.err
}

func holdRequest(method, path, shipmentID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rc := chi.NewRouteContext()
	if shipmentID != "" {
		rc.URLParams.Add("shipmentId", shipmentID)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func pendingShipment(version int) *compliance.HoldShipment {
	return &compliance.HoldShipment{
		Shipment: models.Shipment{
			ID:        uuid.New(),
			Suffix:    "A",
			Outcome:   enums.OutcomeDSToFFL,
			HoldState: enums.HoldPendingFFL,
			Version:   version,
		},
		BaseNumber: 100200,
	}
}

func TestAdminHoldQueueDefaultsToPending(t *testing.T) {
	t.Parallel()

	queue := &stubHoldQueue{list: &compliance.HoldQueueList{Items: []compliance.HoldShipment{*pendingShipment(1)}}}
	handler := AdminHoldQueue(queue, nil)

	req := holdRequest(http.MethodGet, "/api/admin/v1/holds", "", "")
	req = authedRequest(req, uuid.New(), enums.RoleStaff, enums.TierBronze)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if queue.gotState != enums.HoldPendingFFL {
		t.Fatalf("expected pending filter, got %s", queue.gotState)
	}

	var envelope struct {
		Data compliance.HoldQueueList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected 1 queue entry, got %d", len(envelope.Data.Items))
	}
	if envelope.Data.Items[0].BaseNumber != 100200 {
		t.Fatalf("base number missing from queue entry")
	}
}

func TestAdminHoldQueueRejectsUnknownState(t *testing.T) {
	t.Parallel()

	handler := AdminHoldQueue(&stubHoldQueue{}, nil)
	req := holdRequest(http.MethodGet, "/api/admin/v1/holds?state=bogus", "", "")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminClearHoldPassesVersionAndActor(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()
	shipmentID := uuid.New()
	tracker := &stubHoldTracker{shipment: pendingShipment(2)}
	handler := AdminClearHold(tracker, nil)

	req := holdRequest(http.MethodPost, "/api/admin/v1/holds/"+shipmentID.String()+"/clear", shipmentID.String(), `{"expectedVersion":2}`)
	req = authedRequest(req, actorID, enums.RoleStaff, enums.TierBronze)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if tracker.gotShipmentID != shipmentID {
		t.Fatalf("shipment id not forwarded")
	}
	if tracker.gotVersion != 2 {
		t.Fatalf("expected version 2, got %d", tracker.gotVersion)
	}
	if tracker.gotActor == nil || tracker.gotActor.UserID != actorID {
		t.Fatalf("actor not forwarded")
	}
	if tracker.gotActor.Role != enums.RoleStaff.String() {
		t.Fatalf("unexpected actor role %q", tracker.gotActor.Role)
	}
}

func TestAdminClearHoldStaleVersionConflicts(t *testing.T) {
	t.Parallel()

	tracker := &stubHoldTracker{err: pkgerrors.New(pkgerrors.CodeStaleHoldState, "shipment version changed, reload and retry")}
	handler := AdminClearHold(tracker, nil)

	shipmentID := uuid.New()
	req := holdRequest(http.MethodPost, "/api/admin/v1/holds/"+shipmentID.String()+"/clear", shipmentID.String(), `{"expectedVersion":1}`)
	req = authedRequest(req, uuid.New(), enums.RoleStaff, enums.TierBronze)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestAdminRejectHoldRequiresReason(t *testing.T) {
	t.Parallel()

	handler := AdminRejectHold(&stubHoldTracker{}, nil)

	shipmentID := uuid.New()
	req := holdRequest(http.MethodPost, "/api/admin/v1/holds/"+shipmentID.String()+"/reject", shipmentID.String(), `{"expectedVersion":1}`)
	req = authedRequest(req, uuid.New(), enums.RoleStaff, enums.TierBronze)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRejectHoldForwardsReason(t *testing.T) {
	t.Parallel()

	tracker := &stubHoldTracker{shipment: pendingShipment(3)}
	handler := AdminRejectHold(tracker, nil)

	shipmentID := uuid.New()
	req := holdRequest(http.MethodPost, "/api/admin/v1/holds/"+shipmentID.String()+"/reject", shipmentID.String(), `{"expectedVersion":3,"reason":"license expired"}`)
	req = authedRequest(req, uuid.New(), enums.RoleStaff, enums.TierBronze)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if tracker.gotReason != "license expired" {
		t.Fatalf("reason not forwarded, got %q", tracker.gotReason)
	}
}
