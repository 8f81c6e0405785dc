package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func decPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d := dec(t, value)
	return &d
}

func fixedRule(t *testing.T) RuleSet {
	t.Helper()
	tier := TierParams{
		Threshold: dec(t, "200"),
		Percent:   dec(t, "10"),
		Flat:      dec(t, "20"),
	}
	return RuleSet{
		Tiers: map[enums.MembershipTier]TierParams{
			enums.TierBronze:   tier,
			enums.TierGold:     tier,
			enums.TierPlatinum: tier,
		},
		MissingMAPDiscountPercent: dec(t, "5"),
	}
}

func TestPricePercentageMarkupUnderThreshold(t *testing.T) {
	snapshot := models.ProductPricingSnapshot{WholesalePrice: dec(t, "100")}

	for _, tier := range enums.AllMembershipTiers() {
		price, err := Price(snapshot, tier, fixedRule(t))
		if err != nil {
			t.Fatalf("tier %s: unexpected error: %v", tier, err)
		}
		if !price.Equal(dec(t, "110")) {
			t.Fatalf("tier %s: expected 110.00, got %s", tier, price)
		}
	}
}

func TestPriceFlatMarkupAtOrOverThreshold(t *testing.T) {
	cases := []struct {
		wholesale string
		want      string
	}{
		{"500", "520"},
		{"200", "220"}, // threshold boundary uses flat markup
	}
	for _, tc := range cases {
		snapshot := models.ProductPricingSnapshot{WholesalePrice: dec(t, tc.wholesale)}
		price, err := Price(snapshot, enums.TierBronze, fixedRule(t))
		if err != nil {
			t.Fatalf("wholesale %s: unexpected error: %v", tc.wholesale, err)
		}
		if !price.Equal(dec(t, tc.want)) {
			t.Fatalf("wholesale %s: expected %s, got %s", tc.wholesale, tc.want, price)
		}
	}
}

func TestPriceRoundsHalfUp(t *testing.T) {
	// 33.33 * 1.10 = 36.663 -> 36.66; 33.35 * 1.10 = 36.685 -> 36.69
	cases := []struct {
		wholesale string
		want      string
	}{
		{"33.33", "36.66"},
		{"33.35", "36.69"},
	}
	for _, tc := range cases {
		snapshot := models.ProductPricingSnapshot{WholesalePrice: dec(t, tc.wholesale)}
		price, err := Price(snapshot, enums.TierBronze, fixedRule(t))
		if err != nil {
			t.Fatalf("wholesale %s: unexpected error: %v", tc.wholesale, err)
		}
		if !price.Equal(dec(t, tc.want)) {
			t.Fatalf("wholesale %s: expected %s, got %s", tc.wholesale, tc.want, price)
		}
	}
}

func TestPriceGoldMissingMAPDiscount(t *testing.T) {
	snapshot := models.ProductPricingSnapshot{
		WholesalePrice: dec(t, "80"),
		MAPPrice:       decPtr(t, "100"),
		MSRPPrice:      decPtr(t, "100"),
	}

	price, err := Price(snapshot, enums.TierGold, fixedRule(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(dec(t, "95")) {
		t.Fatalf("expected gold price 95.00, got %s", price)
	}

	// Bronze and Platinum are unaffected by the missing-MAP rule.
	for _, tier := range []enums.MembershipTier{enums.TierBronze, enums.TierPlatinum} {
		price, err := Price(snapshot, tier, fixedRule(t))
		if err != nil {
			t.Fatalf("tier %s: unexpected error: %v", tier, err)
		}
		if !price.Equal(dec(t, "88")) {
			t.Fatalf("tier %s: expected 88.00, got %s", tier, price)
		}
	}
}

func TestPriceDistinctMAPDoesNotTriggerGoldDiscount(t *testing.T) {
	snapshot := models.ProductPricingSnapshot{
		WholesalePrice: dec(t, "100"),
		MAPPrice:       decPtr(t, "120"),
		MSRPPrice:      decPtr(t, "150"),
	}
	price, err := Price(snapshot, enums.TierGold, fixedRule(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(dec(t, "110")) {
		t.Fatalf("expected markup price 110.00, got %s", price)
	}
}

func TestPriceRejectsNonPositiveWholesale(t *testing.T) {
	for _, wholesale := range []string{"0", "-10"} {
		snapshot := models.ProductPricingSnapshot{WholesalePrice: dec(t, wholesale)}
		_, err := Price(snapshot, enums.TierBronze, fixedRule(t))
		if !errors.HasCode(err, errors.CodeInvalidProductPricing) {
			t.Fatalf("wholesale %s: expected INVALID_PRODUCT_PRICING, got %v", wholesale, err)
		}
	}
}

func TestMatrixFlagsHiddenGold(t *testing.T) {
	rule := fixedRule(t)
	rule.HideGoldWhenEqualMAP = true
	snapshot := models.ProductPricingSnapshot{
		WholesalePrice: dec(t, "80"),
		MAPPrice:       decPtr(t, "100"),
		MSRPPrice:      decPtr(t, "100"),
	}

	matrix, err := Matrix(snapshot, rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matrix[enums.TierGold].Hidden {
		t.Fatalf("expected gold to be hidden")
	}
	if matrix[enums.TierBronze].Hidden || matrix[enums.TierPlatinum].Hidden {
		t.Fatalf("only gold may be hidden")
	}
	// The gold price is still computed even when hidden.
	if !matrix[enums.TierGold].UnitPrice.Equal(dec(t, "95")) {
		t.Fatalf("expected hidden gold price 95.00, got %s", matrix[enums.TierGold].UnitPrice)
	}
}

func TestBestAvailableUnitExcludesHiddenTiers(t *testing.T) {
	rule := fixedRule(t)
	rule.HideGoldWhenEqualMAP = true
	snapshot := models.ProductPricingSnapshot{
		WholesalePrice: dec(t, "80"),
		MAPPrice:       decPtr(t, "100"),
		MSRPPrice:      decPtr(t, "100"),
	}

	matrix, err := Matrix(snapshot, rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	best, ok := BestAvailableUnit(matrix)
	if !ok {
		t.Fatalf("expected a visible best price")
	}
	// Hidden gold at 95.00 is excluded; the visible best is the markup price.
	if !best.Equal(dec(t, "88")) {
		t.Fatalf("expected best visible price 88.00, got %s", best)
	}
}

func TestDefaultRulePricesMatchDocumentedValues(t *testing.T) {
	rule := DefaultRule()
	if !rule.IsDefault {
		t.Fatalf("expected IsDefault to be set")
	}
	snapshot := models.ProductPricingSnapshot{WholesalePrice: dec(t, "100")}
	price, err := Price(snapshot, enums.TierBronze, rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(dec(t, "110")) {
		t.Fatalf("expected 110.00 under default rule, got %s", price)
	}
}
