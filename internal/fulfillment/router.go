package fulfillment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ridgelinearms/armory-backend/pkg/config"
	"github.com/ridgelinearms/armory-backend/pkg/db/models"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/errors"
)

// Router classifies order lines into fulfillment outcomes. It is a pure
// function over the product snapshot plus two configured manufacturer sets
// reflecting the distributor's shipping accounts: one permitted for
// drop-ship to dealers, one warehouse-only.
type Router struct {
	dropToFFLAllowlist map[string]struct{}
	warehouseOnly      map[string]struct{}
}

// NewRouter normalizes and validates the routing configuration. A
// manufacturer present in both sets is a configuration error, never a
// tie-break guess.
func NewRouter(cfg config.RoutingConfig) (*Router, error) {
	r := &Router{
		dropToFFLAllowlist: normalizeSet(cfg.DropToFFLAllowlist),
		warehouseOnly:      normalizeSet(cfg.WarehouseOnly),
	}

	conflicts := []string{}
	for name := range r.dropToFFLAllowlist {
		if _, ok := r.warehouseOnly[name]; ok {
			conflicts = append(conflicts, name)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return nil, errors.New(errors.CodeRoutingConfigConflict,
			fmt.Sprintf("manufacturers on both the drop-ship allowlist and the warehouse-only set: %s",
				strings.Join(conflicts, ", ")))
	}
	return r, nil
}

// Route applies the decision table top-down, first match wins:
//
//	1. No FFL required: drop-shippable goes straight to the customer,
//	   otherwise it ships from the warehouse.
//	2. FFL required, drop-shippable, and the manufacturer's agreement
//	   permits direct-to-dealer shipping: drop-ship to the dealer.
//	3. FFL required otherwise: receive at the warehouse, then forward.
func (r *Router) Route(snapshot models.ProductPricingSnapshot) enums.FulfillmentOutcome {
	if !snapshot.RequiresFFL {
		if snapshot.DropShippable {
			return enums.OutcomeDSToCustomer
		}
		return enums.OutcomeIHToCustomer
	}

	if snapshot.DropShippable && r.allowsDropToFFL(snapshot.Manufacturer) {
		return enums.OutcomeDSToFFL
	}
	return enums.OutcomeIHToFFL
}

func (r *Router) allowsDropToFFL(manufacturer string) bool {
	_, ok := r.dropToFFLAllowlist[normalizeManufacturer(manufacturer)]
	return ok
}

func normalizeSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if normalized := normalizeManufacturer(name); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

func normalizeManufacturer(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
