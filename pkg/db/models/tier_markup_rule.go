package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// TierMarkupRule is one versioned markup configuration. Exactly one row is
// active at a time; edits deactivate the previous row instead of deleting it.
type TierMarkupRule struct {
	ID     uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status enums.RuleStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`

	BronzeThreshold decimal.Decimal `gorm:"column:bronze_threshold;type:numeric(12,2);not null" json:"bronzeThreshold"`
	BronzePercent   decimal.Decimal `gorm:"column:bronze_percent;type:numeric(6,3);not null" json:"bronzePercent"`
	BronzeFlat      decimal.Decimal `gorm:"column:bronze_flat;type:numeric(12,2);not null" json:"bronzeFlat"`

	GoldThreshold decimal.Decimal `gorm:"column:gold_threshold;type:numeric(12,2);not null" json:"goldThreshold"`
	GoldPercent   decimal.Decimal `gorm:"column:gold_percent;type:numeric(6,3);not null" json:"goldPercent"`
	GoldFlat      decimal.Decimal `gorm:"column:gold_flat;type:numeric(12,2);not null" json:"goldFlat"`

	PlatinumThreshold decimal.Decimal `gorm:"column:platinum_threshold;type:numeric(12,2);not null" json:"platinumThreshold"`
	PlatinumPercent   decimal.Decimal `gorm:"column:platinum_percent;type:numeric(6,3);not null" json:"platinumPercent"`
	PlatinumFlat      decimal.Decimal `gorm:"column:platinum_flat;type:numeric(12,2);not null" json:"platinumFlat"`

	MissingMAPDiscountPercent decimal.Decimal `gorm:"column:missing_map_discount_percent;type:numeric(6,3);not null;default:0" json:"missingMapDiscountPercent"`
	HideGoldWhenEqualMAP      bool            `gorm:"column:hide_gold_when_equal_map;not null;default:false" json:"hideGoldWhenEqualMap"`

	CreatedByUserID *uuid.UUID `gorm:"column:created_by_user_id;type:uuid" json:"createdByUserId,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (TierMarkupRule) TableName() string {
	return "tier_markup_rules"
}
