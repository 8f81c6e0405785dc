package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridgelinearms/armory-backend/pkg/enums"
	"github.com/ridgelinearms/armory-backend/pkg/types"
)

// CheckoutLine is one requested line entering finalization. FFLDealerID is
// the customer's transfer dealer selection; it is required whenever the line
// routes to a dealer and ignored otherwise.
type CheckoutLine struct {
	SKU         string     `json:"sku" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	FFLDealerID *uuid.UUID `json:"fflDealerId,omitempty"`
}

// CheckoutInput is the finalization request. PaymentTxnID comes from the
// payment processor before this service is called; payment itself is a black
// box here.
type CheckoutInput struct {
	CustomerID      uuid.UUID            `json:"customerId" validate:"required"`
	MembershipTier  enums.MembershipTier `json:"membershipTier" validate:"required"`
	PaymentTxnID    string               `json:"paymentTxnId" validate:"required"`
	ShippingAddress *types.Address       `json:"shippingAddress,omitempty"`
	Lines           []CheckoutLine       `json:"lines" validate:"required,dive"`
}

// DestinationRef says where a shipment goes without leaking both options.
type DestinationRef struct {
	Type        string     `json:"type"`
	FFLDealerID *uuid.UUID `json:"fflDealerId,omitempty"`
}

const (
	destinationFFL             = "ffl"
	destinationCustomerAddress = "customer-address"
)

// LineSummary is one confirmed order line in the summary payload.
type LineSummary struct {
	ProductID     uuid.UUID       `json:"productId"`
	SKU           string          `json:"sku"`
	Quantity      int             `json:"quantity"`
	UnitPricePaid decimal.Decimal `json:"unitPricePaid"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

// ShipmentSummary is one shipment in the confirmation payload.
type ShipmentSummary struct {
	ShipmentID    uuid.UUID                `json:"shipmentId"`
	Suffix        string                   `json:"suffix"`
	DisplayNumber string                   `json:"displayNumber"`
	Outcome       enums.FulfillmentOutcome `json:"outcome"`
	Destination   DestinationRef           `json:"destination"`
	Lines         []LineSummary            `json:"lines"`
	Total         decimal.Decimal          `json:"total"`
	HoldType      enums.HoldState          `json:"holdType"`
	HoldStartedAt *time.Time               `json:"holdStartedAt,omitempty"`
	HoldClearedAt *time.Time               `json:"holdClearedAt,omitempty"`
}

// SavingsSummary is the membership value block on the confirmation view.
type SavingsSummary struct {
	Actual    decimal.Decimal `json:"actual"`
	Potential decimal.Decimal `json:"potential"`
}

// OrderSummary is the confirmation payload. For an unsplit order
// DisplayNumber carries the `-0` convention; split orders show the bare base
// number and each shipment carries its own suffixed number.
type OrderSummary struct {
	OrderID        uuid.UUID            `json:"orderId"`
	CustomerID     uuid.UUID            `json:"customerId"`
	BaseNumber     int64                `json:"baseNumber"`
	DisplayNumber  string               `json:"displayNumber"`
	MembershipTier enums.MembershipTier `json:"membershipTier"`
	Status         enums.OrderStatus    `json:"status"`
	Shipments      []ShipmentSummary    `json:"shipments"`
	Totals         decimal.Decimal      `json:"totals"`
	Savings        SavingsSummary       `json:"savings"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// OrderListItem is one row of the paginated order list.
type OrderListItem struct {
	OrderID       uuid.UUID         `json:"orderId"`
	BaseNumber    int64             `json:"baseNumber"`
	DisplayNumber string            `json:"displayNumber"`
	Status        enums.OrderStatus `json:"status"`
	Total         decimal.Decimal   `json:"total"`
	ShipmentCount int               `json:"shipmentCount"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// OrderList wraps a page of orders plus the next cursor.
type OrderList struct {
	Orders     []OrderListItem `json:"orders"`
	NextCursor *string         `json:"nextCursor,omitempty"`
}
