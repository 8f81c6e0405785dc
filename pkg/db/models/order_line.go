package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// OrderLine is one priced, routed line of an order. UnitPricePaid and the
// embedded snapshot are immutable once the order is placed.
type OrderLine struct {
	ID                       uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID                  uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index"`
	ShipmentID               uuid.UUID                `gorm:"column:shipment_id;type:uuid;not null;index"`
	ProductID                uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	SKU                      string                   `gorm:"column:sku;not null"`
	Quantity                 int                      `gorm:"column:quantity;not null"`
	MembershipTierAtPurchase enums.MembershipTier     `gorm:"column:membership_tier_at_purchase;type:text;not null"`
	UnitPricePaid            decimal.Decimal          `gorm:"column:unit_price_paid;type:numeric(12,2);not null"`
	Outcome                  enums.FulfillmentOutcome `gorm:"column:outcome;type:text;not null"`

	Snapshot ProductPricingSnapshot `gorm:"embedded;embeddedPrefix:snapshot_"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is the paid unit price times quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPricePaid.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DisplayNumber joins an order's base number with a shipment suffix.
func DisplayNumber(baseNumber int64, suffix string) string {
	return strconv.FormatInt(baseNumber, 10) + "-" + suffix
}
