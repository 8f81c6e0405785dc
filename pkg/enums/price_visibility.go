package enums

import "fmt"

// PriceVisibility says which tier prices a caller may see. The pricing engine
// always computes every tier; visibility is applied at the response edge.
type PriceVisibility string

const (
	VisibilityPublic PriceVisibility = "public"
	VisibilityStaff  PriceVisibility = "staff"
)

var validPriceVisibilities = []PriceVisibility{
	VisibilityPublic,
	VisibilityStaff,
}

func (v PriceVisibility) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PriceVisibility.
func (v PriceVisibility) IsValid() bool {
	for _, candidate := range validPriceVisibilities {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePriceVisibility converts raw input into a PriceVisibility.
func ParsePriceVisibility(value string) (PriceVisibility, error) {
	for _, candidate := range validPriceVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price visibility %q", value)
}
