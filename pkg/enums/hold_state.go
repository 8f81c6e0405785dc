package enums

import "fmt"

// HoldState tracks a shipment's compliance hold while the destination dealer
// is verified against the FFL directory.
type HoldState string

const (
	HoldNone       HoldState = "none"
	HoldPendingFFL HoldState = "pending_ffl_verification"
	HoldCleared    HoldState = "cleared"
	HoldRejected   HoldState = "rejected"
)

var validHoldStates = []HoldState{
	HoldNone,
	HoldPendingFFL,
	HoldCleared,
	HoldRejected,
}

// String implements fmt.Stringer.
func (h HoldState) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HoldState.
func (h HoldState) IsValid() bool {
	for _, candidate := range validHoldStates {
		if candidate == h {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the hold can no longer transition.
func (h HoldState) IsTerminal() bool {
	return h == HoldRejected
}

// ParseHoldState converts raw input into a HoldState.
func ParseHoldState(value string) (HoldState, error) {
	for _, candidate := range validHoldStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hold state %q", value)
}
