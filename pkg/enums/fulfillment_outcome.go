package enums

import "fmt"

// FulfillmentOutcome classifies how an order line physically reaches its
// destination: drop-shipped from the distributor (DS) or received at the
// operator's warehouse first (IH), to a dealer (FFL) or to the consumer.
type FulfillmentOutcome string

const (
	OutcomeDSToFFL      FulfillmentOutcome = "ds_to_ffl"
	OutcomeDSToCustomer FulfillmentOutcome = "ds_to_customer"
	OutcomeIHToFFL      FulfillmentOutcome = "ih_to_ffl"
	OutcomeIHToCustomer FulfillmentOutcome = "ih_to_customer"
)

var validFulfillmentOutcomes = []FulfillmentOutcome{
	OutcomeDSToFFL,
	OutcomeDSToCustomer,
	OutcomeIHToFFL,
	OutcomeIHToCustomer,
}

// String implements fmt.Stringer.
func (f FulfillmentOutcome) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentOutcome.
func (f FulfillmentOutcome) IsValid() bool {
	for _, candidate := range validFulfillmentOutcomes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ToFFL reports whether the outcome terminates at a dealer.
func (f FulfillmentOutcome) ToFFL() bool {
	return f == OutcomeDSToFFL || f == OutcomeIHToFFL
}

// ParseFulfillmentOutcome converts raw input into a FulfillmentOutcome.
func ParseFulfillmentOutcome(value string) (FulfillmentOutcome, error) {
	for _, candidate := range validFulfillmentOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment outcome %q", value)
}
