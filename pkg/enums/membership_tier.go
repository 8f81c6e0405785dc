package enums

import "fmt"

// MembershipTier is the customer's membership level; it determines the unit
// price a customer pays for every catalog item.
type MembershipTier string

const (
	TierBronze   MembershipTier = "bronze"
	TierGold     MembershipTier = "gold"
	TierPlatinum MembershipTier = "platinum"
)

var validMembershipTiers = []MembershipTier{
	TierBronze,
	TierGold,
	TierPlatinum,
}

// AllMembershipTiers returns every tier in ascending benefit order.
func AllMembershipTiers() []MembershipTier {
	return append([]MembershipTier{}, validMembershipTiers...)
}

// String implements fmt.Stringer.
func (m MembershipTier) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MembershipTier.
func (m MembershipTier) IsValid() bool {
	for _, candidate := range validMembershipTiers {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMembershipTier converts raw input into a MembershipTier.
func ParseMembershipTier(value string) (MembershipTier, error) {
	for _, candidate := range validMembershipTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership tier %q", value)
}
