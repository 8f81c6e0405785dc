package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridgelinearms/armory-backend/internal/pricing"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/pagination"
)

// Repository defines persistence operations for finalized orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateShipments(ctx context.Context, shipments []models.Shipment) error
	CreateOrderLines(ctx context.Context, lines []models.OrderLine) error
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderByBaseNumber(ctx context.Context, baseNumber int64) (*models.Order, error)
	MaxBaseNumber(ctx context.Context) (int64, error)
	ListOrders(ctx context.Context, customerID *uuid.UUID, params pagination.Params) (*OrderList, error)
}

// TxRunner executes fn within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventEmitter queues domain events transactionally.
type EventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// BaseNumberAllocator hands out order base numbers. Next must never return
// the same value twice across concurrent callers.
type BaseNumberAllocator interface {
	Next(ctx context.Context) (int64, error)
}

// RuleLoader resolves the pricing rule applied to a finalization.
type RuleLoader interface {
	Load(ctx context.Context) (pricing.RuleSet, error)
}

// ProductCatalog resolves checkout SKUs to catalog products.
type ProductCatalog interface {
	FindActiveBySKU(ctx context.Context, sku string) (*models.Product, error)
}

// DealerDirectory resolves a dealer's current directory status.
type DealerDirectory interface {
	DealerStatus(ctx context.Context, dealerID uuid.UUID) (enums.FFLDirectoryStatus, error)
}
