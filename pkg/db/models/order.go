package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/types"
)

// Order is a finalized checkout. BaseNumber is assigned exactly once from the
// atomic allocator; the displayed order number derives from it plus the
// shipment suffix.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BaseNumber       int64                `gorm:"column:base_number;not null;uniqueIndex"`
	CustomerID       uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	MembershipTier   enums.MembershipTier `gorm:"column:membership_tier;type:text;not null"`
	Status           enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'finalized'"`
	Total            decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	SavingsActual    decimal.Decimal      `gorm:"column:savings_actual;type:numeric(12,2);not null;default:0"`
	SavingsPotential decimal.Decimal      `gorm:"column:savings_potential;type:numeric(12,2);not null;default:0"`
	PaymentTxnID     string               `gorm:"column:payment_txn_id;not null"`
	ShippingAddress  *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Shipments        []Shipment           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
