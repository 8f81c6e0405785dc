package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

// TierParams carries one tier's markup inputs. Below the threshold the
// percentage markup applies; at or above it the flat markup applies instead.
type TierParams struct {
	Threshold decimal.Decimal
	Percent   decimal.Decimal
	Flat      decimal.Decimal
}

// RuleSet is one consistent snapshot of the active markup configuration. It
// is loaded once per request and passed explicitly through every pricing
// call, so no rule edit can land mid-computation for a single order.
type RuleSet struct {
	RuleID                    uuid.UUID
	Tiers                     map[enums.MembershipTier]TierParams
	MissingMAPDiscountPercent decimal.Decimal
	HideGoldWhenEqualMAP      bool
	IsDefault                 bool
}

// Params returns the tier's markup inputs and whether the tier is configured.
func (r RuleSet) Params(tier enums.MembershipTier) (TierParams, bool) {
	p, ok := r.Tiers[tier]
	return p, ok
}

// FromModel converts a stored rule row into the engine's value type.
func FromModel(rule models.TierMarkupRule) RuleSet {
	return RuleSet{
		RuleID: rule.ID,
		Tiers: map[enums.MembershipTier]TierParams{
			enums.TierBronze: {
				Threshold: rule.BronzeThreshold,
				Percent:   rule.BronzePercent,
				Flat:      rule.BronzeFlat,
			},
			enums.TierGold: {
				Threshold: rule.GoldThreshold,
				Percent:   rule.GoldPercent,
				Flat:      rule.GoldFlat,
			},
			enums.TierPlatinum: {
				Threshold: rule.PlatinumThreshold,
				Percent:   rule.PlatinumPercent,
				Flat:      rule.PlatinumFlat,
			},
		},
		MissingMAPDiscountPercent: rule.MissingMAPDiscountPercent,
		HideGoldWhenEqualMAP:      rule.HideGoldWhenEqualMAP,
	}
}

// DefaultRule is the documented fallback used when no active rule row exists.
// Pricing on it is logged as a warning by the loader; it never prices at $0.
func DefaultRule() RuleSet {
	tier := TierParams{
		Threshold: decimal.NewFromInt(200),
		Percent:   decimal.NewFromInt(10),
		Flat:      decimal.NewFromInt(20),
	}
	return RuleSet{
		Tiers: map[enums.MembershipTier]TierParams{
			enums.TierBronze:   tier,
			enums.TierGold:     tier,
			enums.TierPlatinum: tier,
		},
		MissingMAPDiscountPercent: decimal.NewFromInt(5),
		HideGoldWhenEqualMAP:      false,
		IsDefault:                 true,
	}
}
