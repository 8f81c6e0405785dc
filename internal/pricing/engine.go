package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
	"github.com/ridgelinearms/armory-backend/pkg/money"
)

var one = decimal.NewFromInt(1)

// Price computes the unit price for one product snapshot at one tier.
//
// Below the tier threshold the wholesale price is marked up by percentage;
// at or above it the flat markup applies instead, a deliberate degressive
// curve so large-ticket items do not carry a disproportionate percentage.
// Gold pricing switches to an MSRP-based discount when the distributor
// supplied no real MAP (signalled by MAP == MSRP).
//
// The price is always computed, whoever asks. Visibility of Platinum and of
// suppressed Gold prices is a display concern owned by callers.
func Price(snapshot models.ProductPricingSnapshot, tier enums.MembershipTier, rule RuleSet) (decimal.Decimal, error) {
	if !snapshot.WholesalePrice.IsPositive() {
		return decimal.Zero, errors.New(errors.CodeInvalidProductPricing,
			fmt.Sprintf("wholesale price must be positive, got %s", snapshot.WholesalePrice))
	}
	if !tier.IsValid() {
		return decimal.Zero, errors.New(errors.CodeValidation, fmt.Sprintf("unknown tier %q", tier))
	}

	if tier == enums.TierGold && snapshot.MissingMAP() {
		discount := money.FromPercent(rule.MissingMAPDiscountPercent)
		return money.Round(snapshot.MSRPPrice.Mul(one.Sub(discount))), nil
	}

	params, ok := rule.Params(tier)
	if !ok {
		return decimal.Zero, errors.New(errors.CodeNoActivePricingRule,
			fmt.Sprintf("rule has no parameters for tier %q", tier))
	}

	if snapshot.WholesalePrice.LessThan(params.Threshold) {
		markup := one.Add(money.FromPercent(params.Percent))
		return money.Round(snapshot.WholesalePrice.Mul(markup)), nil
	}
	return money.Round(snapshot.WholesalePrice.Add(params.Flat)), nil
}

// TierPrice is one tier's computed price plus its display suppression flag.
type TierPrice struct {
	Tier      enums.MembershipTier
	UnitPrice decimal.Decimal
	Hidden    bool
}

// Matrix computes the full tier price matrix for one snapshot. Gold is
// flagged hidden when the rule suppresses it for missing-MAP products;
// Platinum is never flagged here because its visibility depends on the
// caller's role, not on the product.
func Matrix(snapshot models.ProductPricingSnapshot, rule RuleSet) (map[enums.MembershipTier]TierPrice, error) {
	matrix := make(map[enums.MembershipTier]TierPrice, len(enums.AllMembershipTiers()))
	for _, tier := range enums.AllMembershipTiers() {
		price, err := Price(snapshot, tier, rule)
		if err != nil {
			return nil, err
		}
		entry := TierPrice{Tier: tier, UnitPrice: price}
		if tier == enums.TierGold && snapshot.MissingMAP() && rule.HideGoldWhenEqualMAP {
			entry.Hidden = true
		}
		matrix[tier] = entry
	}
	return matrix, nil
}

// BestAvailableUnit returns the minimum visible unit price across tiers.
// Hidden tiers are excluded; a customer cannot be upsold to a price the
// storefront refuses to display.
func BestAvailableUnit(matrix map[enums.MembershipTier]TierPrice) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, entry := range matrix {
		if entry.Hidden {
			continue
		}
		if !found || entry.UnitPrice.LessThan(best) {
			best = entry.UnitPrice
			found = true
		}
	}
	return best, found
}
