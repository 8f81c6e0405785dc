package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderFinalizedEvent is published once per finalized order.
type OrderFinalizedEvent struct {
	OrderID          uuid.UUID              `json:"orderId"`
	BaseNumber       int64                  `json:"baseNumber"`
	CustomerID       uuid.UUID              `json:"customerId"`
	MembershipTier   string                 `json:"membershipTier"`
	Total            string                 `json:"total"`
	SavingsActual    string                 `json:"savingsActual"`
	SavingsPotential string                 `json:"savingsPotential"`
	Shipments        []ShipmentFinalizedRef `json:"shipments"`
}

// ShipmentFinalizedRef summarizes one shipment inside OrderFinalizedEvent.
type ShipmentFinalizedRef struct {
	ShipmentID    uuid.UUID `json:"shipmentId"`
	DisplayNumber string    `json:"displayNumber"`
	Outcome       string    `json:"outcome"`
	Total         string    `json:"total"`
	OnHold        bool      `json:"onHold"`
}

// HoldEvent covers hold opened/cleared/rejected transitions.
type HoldEvent struct {
	ShipmentID    uuid.UUID  `json:"shipmentId"`
	OrderID       uuid.UUID  `json:"orderId"`
	DisplayNumber string     `json:"displayNumber"`
	HoldState     string     `json:"holdState"`
	HoldStartedAt *time.Time `json:"holdStartedAt,omitempty"`
	HoldClearedAt *time.Time `json:"holdClearedAt,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// RuleChangedEvent is published when the active markup rule is replaced or
// deactivated.
type RuleChangedEvent struct {
	RuleID         uuid.UUID  `json:"ruleId"`
	PreviousRuleID *uuid.UUID `json:"previousRuleId,omitempty"`
	Status         string     `json:"status"`
}
