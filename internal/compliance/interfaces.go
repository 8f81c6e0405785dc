package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/ffl"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// HoldShipment is a shipment row joined with its order's base number for
// display purposes.
type HoldShipment struct {
	models.Shipment
	BaseNumber int64 `json:"baseNumber"`
}

// HoldQueueList is one page of the staff hold queue.
type HoldQueueList struct {
	Items      []HoldShipment `json:"items"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}

// Repository defines persistence operations for shipment holds.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindHoldShipment(ctx context.Context, shipmentID uuid.UUID) (*HoldShipment, error)
	TransitionHold(ctx context.Context, shipmentID uuid.UUID, expectedVersion int, updates map[string]any) (int64, error)
	ListByHoldState(ctx context.Context, state enums.HoldState, params pagination.Params) (*HoldQueueList, error)
}

// DealerDirectory resolves a dealer's current directory status.
type DealerDirectory interface {
	DealerStatus(ctx context.Context, dealerID uuid.UUID) (enums.FFLDirectoryStatus, error)
}

// TxRunner executes fn within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter queues domain events transactionally.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

var _ DealerDirectory = (*ffl.Repo)(nil)
