package enums

import "fmt"

// FFLDirectoryStatus is the verification status of a dealer in the FFL
// directory. OnFile and Preferred dealers ship without a compliance hold.
type FFLDirectoryStatus string

const (
	FFLNotOnFile FFLDirectoryStatus = "not_on_file"
	FFLOnFile    FFLDirectoryStatus = "on_file"
	FFLPreferred FFLDirectoryStatus = "preferred"
)

var validFFLDirectoryStatuses = []FFLDirectoryStatus{
	FFLNotOnFile,
	FFLOnFile,
	FFLPreferred,
}

// String implements fmt.Stringer.
func (s FFLDirectoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FFLDirectoryStatus.
func (s FFLDirectoryStatus) IsValid() bool {
	for _, candidate := range validFFLDirectoryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Verified reports whether a shipment to this dealer can skip the hold.
func (s FFLDirectoryStatus) Verified() bool {
	return s == FFLOnFile || s == FFLPreferred
}

// ParseFFLDirectoryStatus converts raw input into a FFLDirectoryStatus.
func ParseFFLDirectoryStatus(value string) (FFLDirectoryStatus, error) {
	for _, candidate := range validFFLDirectoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ffl directory status %q", value)
}
