package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog record fed from the distributor inventory
// feed. Pricing inputs live here until an order line snapshots them.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU            string           `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Title          string           `gorm:"column:title;not null" json:"title"`
	Manufacturer   string           `gorm:"column:manufacturer;not null" json:"manufacturer"`
	WholesalePrice decimal.Decimal  `gorm:"column:wholesale_price;type:numeric(12,2);not null" json:"-"`
	MAPPrice       *decimal.Decimal `gorm:"column:map_price;type:numeric(12,2)" json:"mapPrice,omitempty"`
	MSRPPrice      *decimal.Decimal `gorm:"column:msrp_price;type:numeric(12,2)" json:"msrpPrice,omitempty"`
	RequiresFFL    bool             `gorm:"column:requires_ffl;not null;default:false" json:"requiresFFL"`
	DropShippable  bool             `gorm:"column:drop_shippable;not null;default:false" json:"dropShippable"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// PricingSnapshot freezes the product's pricing facts for an order line.
func (p Product) PricingSnapshot() ProductPricingSnapshot {
	return ProductPricingSnapshot{
		WholesalePrice: p.WholesalePrice,
		MAPPrice:       p.MAPPrice,
		MSRPPrice:      p.MSRPPrice,
		Manufacturer:   p.Manufacturer,
		RequiresFFL:    p.RequiresFFL,
		DropShippable:  p.DropShippable,
	}
}

// ProductPricingSnapshot holds the immutable pricing facts captured when an
// order line is priced. It is embedded in OrderLine and never mutated after
// the order is placed, so the paid price can always be re-derived for audit.
type ProductPricingSnapshot struct {
	WholesalePrice decimal.Decimal  `gorm:"column:wholesale_price;type:numeric(12,2);not null" json:"wholesalePrice"`
	MAPPrice       *decimal.Decimal `gorm:"column:map_price;type:numeric(12,2)" json:"mapPrice,omitempty"`
	MSRPPrice      *decimal.Decimal `gorm:"column:msrp_price;type:numeric(12,2)" json:"msrpPrice,omitempty"`
	Manufacturer   string           `gorm:"column:manufacturer;not null" json:"manufacturer"`
	RequiresFFL    bool             `gorm:"column:requires_ffl;not null" json:"requiresFFL"`
	DropShippable  bool             `gorm:"column:drop_shippable;not null" json:"dropShippable"`
}

// MissingMAP reports whether the distributor supplied no real MAP, which the
// feed signals by setting MAP equal to MSRP.
func (s ProductPricingSnapshot) MissingMAP() bool {
	if s.MAPPrice == nil || s.MSRPPrice == nil {
		return false
	}
	return s.MAPPrice.Equal(*s.MSRPPrice)
}
