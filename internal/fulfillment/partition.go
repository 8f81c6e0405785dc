package fulfillment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
)

// UnsplitSuffix marks the single shipment of an order that was not split.
const UnsplitSuffix = "0"

// RoutedLine is one priced and routed order line entering the partitioner.
// FFLDealerID must be set for dealer-bound outcomes.
type RoutedLine struct {
	ProductID     uuid.UUID
	SKU           string
	Quantity      int
	UnitPricePaid decimal.Decimal
	Outcome       enums.FulfillmentOutcome
	FFLDealerID   *uuid.UUID
	Snapshot      models.ProductPricingSnapshot
}

// ShipmentGroup is one partitioned shipment before persistence.
type ShipmentGroup struct {
	Suffix      string
	Outcome     enums.FulfillmentOutcome
	FFLDealerID *uuid.UUID
	Lines       []RoutedLine
	Total       decimal.Decimal
}

// DisplayNumber renders the group's customer-facing number.
func (g ShipmentGroup) DisplayNumber(baseNumber int64) string {
	return models.DisplayNumber(baseNumber, g.Suffix)
}

// Partition stable-groups lines by (outcome, destination) preserving
// first-seen order, assigns suffixes in discovery order, and totals each
// group. A single-group order keeps the unsplit suffix instead of A. The
// grouping is deterministic: the same input always yields the same
// suffixes, so re-running a failed finalization cannot renumber shipments.
func Partition(lines []RoutedLine) ([]ShipmentGroup, error) {
	if len(lines) == 0 {
		return nil, errors.New(errors.CodeEmptyOrder, "cannot partition an order with no lines")
	}

	groups := []*ShipmentGroup{}
	index := map[string]*ShipmentGroup{}

	for _, line := range lines {
		key, err := destinationKey(line)
		if err != nil {
			return nil, err
		}
		group, ok := index[key]
		if !ok {
			group = &ShipmentGroup{
				Outcome:     line.Outcome,
				FFLDealerID: line.FFLDealerID,
				Total:       decimal.Zero,
			}
			index[key] = group
			groups = append(groups, group)
		}
		group.Lines = append(group.Lines, line)
		group.Total = group.Total.Add(line.UnitPricePaid.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	out := make([]ShipmentGroup, len(groups))
	for i, group := range groups {
		if len(groups) == 1 {
			group.Suffix = UnsplitSuffix
		} else {
			group.Suffix = suffixFor(i)
		}
		out[i] = *group
	}
	return out, nil
}

func destinationKey(line RoutedLine) (string, error) {
	if !line.Outcome.IsValid() {
		return "", errors.New(errors.CodeValidation, fmt.Sprintf("invalid outcome %q", line.Outcome))
	}
	if line.Outcome.ToFFL() {
		if line.FFLDealerID == nil || *line.FFLDealerID == uuid.Nil {
			return "", errors.New(errors.CodeMissingFFLSelection,
				fmt.Sprintf("line %s requires a dealer selection", line.SKU))
		}
		return string(line.Outcome) + "|ffl:" + line.FFLDealerID.String(), nil
	}
	return string(line.Outcome) + "|customer-address", nil
}

// suffixFor yields A, B, ..., Z, AA, AB, ... in group discovery order.
func suffixFor(i int) string {
	suffix := ""
	for i >= 0 {
		suffix = string(rune('A'+i%26)) + suffix
		i = i/26 - 1
	}
	return suffix
}
