package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/money"
)

// PricedLine is the savings calculator's per-line input: the frozen snapshot
// plus the price the customer actually paid.
type PricedLine struct {
	Snapshot      models.ProductPricingSnapshot
	Quantity      int
	UnitPricePaid decimal.Decimal
}

// Savings is the realized and foregone membership value for a set of lines.
type Savings struct {
	// Actual is what the customer saved against the retail (MSRP) reference.
	Actual decimal.Decimal
	// Potential is what the customer would additionally save on the best
	// available tier; zero when already on the best tier for every line.
	Potential decimal.Decimal
}

// ComputeSavings totals realized and potential savings over priced lines.
// Each line's contribution is rounded to 2 decimals before summing, so the
// displayed totals always equal the sum of displayed per-line values.
func ComputeSavings(lines []PricedLine, tier enums.MembershipTier, rule RuleSet) (Savings, error) {
	actual := money.Zero()
	potential := money.Zero()

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))

		if line.Snapshot.MSRPPrice != nil {
			perUnit := line.Snapshot.MSRPPrice.Sub(line.UnitPricePaid)
			actual = actual.Add(money.Round(money.Max(money.Zero(), perUnit).Mul(qty)))
		}

		matrix, err := Matrix(line.Snapshot, rule)
		if err != nil {
			return Savings{}, err
		}
		best, ok := BestAvailableUnit(matrix)
		if !ok {
			continue
		}
		perUnit := line.UnitPricePaid.Sub(best)
		potential = potential.Add(money.Round(money.Max(money.Zero(), perUnit).Mul(qty)))
	}

	return Savings{Actual: actual, Potential: potential}, nil
}
