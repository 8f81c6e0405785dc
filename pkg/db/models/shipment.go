package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// Shipment is one routed slice of an order. Suffix is `0` for an unsplit
// order and `A`, `B`, ... in group discovery order otherwise. Hold fields are
// mutated only through the compliance tracker; Version backs its optimistic
// concurrency check.
type Shipment struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Suffix      string                   `gorm:"column:suffix;not null" json:"suffix"`
	Outcome     enums.FulfillmentOutcome `gorm:"column:outcome;type:text;not null" json:"outcome"`
	FFLDealerID *uuid.UUID               `gorm:"column:ffl_dealer_id;type:uuid" json:"fflDealerId,omitempty"`
	Total       decimal.Decimal          `gorm:"column:total;type:numeric(12,2);not null" json:"total"`

	HoldState     enums.HoldState `gorm:"column:hold_state;type:text;not null;default:'none'" json:"holdState"`
	HoldStartedAt *time.Time      `gorm:"column:hold_started_at" json:"holdStartedAt,omitempty"`
	HoldClearedAt *time.Time      `gorm:"column:hold_cleared_at" json:"holdClearedAt,omitempty"`
	Version       int             `gorm:"column:version;not null;default:1" json:"version"`

	Lines     []OrderLine `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// DisplayNumber renders the customer-facing shipment number.
func (s Shipment) DisplayNumber(baseNumber int64) string {
	return DisplayNumber(baseNumber, s.Suffix)
}
